package api

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/valyala/fasthttp"

	"github.com/abhisek/lingoquiz/internal/engine"
)

// Response is the envelope of every JSON response.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

func respondJSON(ctx *fasthttp.RequestCtx, status int, resp Response) {
	ctx.Response.Header.Set("Content-Type", "application/json")
	ctx.SetStatusCode(status)

	body, err := json.Marshal(resp)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		ctx.SetBodyString(`{"success":false,"error":"encode response"}`)
		return
	}
	ctx.SetBody(body)
}

func respondOK(ctx *fasthttp.RequestCtx, data any, message string) {
	respondJSON(ctx, fasthttp.StatusOK, Response{Success: true, Message: message, Data: data})
}

func respondError(ctx *fasthttp.RequestCtx, status int, code, message string, data any) {
	respondJSON(ctx, status, Response{Success: false, Error: message, Code: code, Data: data})
}

// cooldownData accompanies a cooldown rejection.
type cooldownData struct {
	RemainingSeconds int `json:"remaining_seconds"`
}

// respondEngineError maps engine errors onto HTTP statuses. Anything
// unrecognized is an internal failure.
func (s *Server) respondEngineError(ctx *fasthttp.RequestCtx, err error) {
	var ce *engine.CooldownError
	switch {
	case errors.As(err, &ce):
		respondError(ctx, fasthttp.StatusTooManyRequests, "cooldown_active", err.Error(),
			cooldownData{RemainingSeconds: int(ce.Remaining.Round(time.Second) / time.Second)})
	case errors.Is(err, engine.ErrSessionAlreadyActive):
		respondError(ctx, fasthttp.StatusConflict, "session_active", err.Error(), nil)
	case errors.Is(err, engine.ErrNoQuestionsAvailable):
		respondError(ctx, fasthttp.StatusNotFound, "no_questions", err.Error(), nil)
	default:
		s.logger.Printf("%s %s: %v", ctx.Method(), ctx.Path(), err)
		respondError(ctx, fasthttp.StatusInternalServerError, "internal", "internal error", nil)
	}
}

// respondInvalid reports a malformed or invalid request body.
func respondInvalid(ctx *fasthttp.RequestCtx, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		respondError(ctx, fasthttp.StatusBadRequest, "invalid_request", "validation failed", fields)
		return
	}
	respondError(ctx, fasthttp.StatusBadRequest, "invalid_request", err.Error(), nil)
}
