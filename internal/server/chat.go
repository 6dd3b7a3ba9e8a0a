package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/crm-assistant/internal/chat"
	"github.com/sells-group/crm-assistant/internal/model"
	"github.com/sells-group/crm-assistant/internal/prompt"
)

const maxChatBody = 1 << 20

// Client-facing messages. Internal detail stays in the logs.
const (
	msgInvalidBody   = "Corpo da requisição inválido"
	msgEmptyMessage  = "Mensagem é obrigatória"
	msgInvalidFilter = "Filtro de datas inválido"
	msgProcessing    = "Erro ao processar mensagem"
	msgStreamFailed  = "Erro ao gerar resposta"
)

type chatRequest struct {
	Message string           `json:"message"`
	History []chat.Message   `json:"history"`
	Filter  *model.DateRange `json:"filtro"`
}

// dateRange resolves the request filter, defaulting to the last days days.
func (req chatRequest) dateRange(s *Server) (model.DateRange, error) {
	if req.Filter == nil || (req.Filter.Start == "" && req.Filter.End == "") {
		return model.DefaultDateRange(s.now(), s.defaultDays), nil
	}
	return model.NewDateRange(req.Filter.Start, req.Filter.End)
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	log := zap.L().With(zap.String("request_id", RequestID(r.Context())))

	var req chatRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBody)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidBody)
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, msgEmptyMessage)
		return
	}

	user := sessionUser(r)
	var contextText string
	if len(req.History) == 0 {
		rng, err := req.dateRange(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidFilter)
			return
		}
		a, err := s.analysis.FetchAnalysis(r.Context(), rng, user.ID, user.IsAdmin())
		if err != nil {
			log.Error("server: fetch analysis", zap.Int64("user_id", user.ID), zap.Error(err))
			writeError(w, http.StatusInternalServerError, msgProcessing)
			return
		}
		contextText = prompt.Build(a, user.Name, req.Message)
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		log.Error("server: response writer cannot flush")
		writeError(w, http.StatusInternalServerError, msgProcessing)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	chunks := s.relay.StreamReply(ctx, req.History, req.Message, contextText)

	// Headers are committed only once the provider has produced something,
	// so an immediate failure can still be a plain 500.
	first, open := <-chunks
	if open && first.Err != nil {
		log.Error("server: start reply", zap.Error(first.Err))
		writeError(w, http.StatusInternalServerError, msgProcessing)
		return
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if open {
		if err := writeText(w, first.Text); err != nil {
			return
		}
		flusher.Flush()
		for c := range chunks {
			if c.Err != nil {
				log.Error("server: reply interrupted", zap.Error(c.Err))
				writeEvent(w, "error", map[string]string{"error": msgStreamFailed}) //nolint:errcheck
				flusher.Flush()
				return
			}
			if err := writeText(w, c.Text); err != nil {
				log.Debug("server: client went away", zap.Error(err))
				return
			}
			flusher.Flush()
		}
	}
	if r.Context().Err() != nil {
		return
	}
	io.WriteString(w, "data: [DONE]\n\n") //nolint:errcheck
	flusher.Flush()
}

func writeText(w io.Writer, text string) error {
	return writeEvent(w, "", map[string]string{"text": text})
}

// writeEvent writes one SSE frame, with an event line when event is set.
func writeEvent(w io.Writer, event string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if event != "" {
		if _, err := fmt.Fprintf(w, "event: %s\n", event); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", b)
	return err
}
