package handlers

import (
	"net/http"

	"go.uber.org/zap"
)

func respondWithError(logger *zap.Logger, w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		logger.Error(logMsg, zap.Int("status", status), zap.Error(err))
	}

	http.Error(w, userMsg, status)
}
