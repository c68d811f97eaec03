package handlers

//go:generate mockgen -source=webhook.go -destination=webhook_mock.go -package=handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sbilibin2017/gw-todo-web/internal/logger"
)

// Deployer runs the redeploy commands.
type Deployer interface {
	Run(ctx context.Context) ([]byte, error)
}

// NewWebhookHandler returns an HTTP handler that redeploys the app on push.
// @Summary Deployment webhook
// @Description Runs the configured deployment commands and returns their output
// @Tags ops
// @Produce plain
// @Success 200 {string} string "Command output"
// @Failure 500 {string} string "Command failed"
// @Router /webhook [post]
func NewWebhookHandler(deployer Deployer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		out, err := deployer.Run(r.Context())

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if err != nil {
			logger.Log.Errorw("deploy failed", "err", err)
			w.WriteHeader(http.StatusInternalServerError)
			fmt.Fprintf(w, "output: %s\nerror: %v\n", out, err)
			return
		}

		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "output: %s", out)
	}
}
