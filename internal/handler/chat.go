package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/smartplay/internal/service"
)

// QuestionService answers a question about a stored video.
// *service.QAService implements it.
type QuestionService interface {
	Ask(ctx context.Context, userID uint64, videoID, question string) (service.Answer, error)
}

// ChatHandler serves POST /v1/chat/:videoId.
type ChatHandler struct {
	QA  QuestionService
	Log *slog.Logger
}

func NewChatHandler(qa QuestionService, log *slog.Logger) *ChatHandler {
	return &ChatHandler{QA: qa, Log: log}
}

type askReq struct {
	Question string `json:"question"`
}

// Ask answers the question and returns {"answer": ...}.  Validation of the
// question happens in the service so a blank one never reaches the store.
func (h *ChatHandler) Ask(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req askReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}

	ans, err := h.QA.Ask(c.Request().Context(), uid, c.Param("videoId"), req.Question)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"answer": ans.Text, "asked_at": ans.Entry.AskedAt})
}
