package http

import (
	"encoding/json"
	"errors"
	"fmt"

	"quizplay-service/internal/app"
	"quizplay-service/internal/domain"
)

var (
	errUnsupportedMessage = errors.New("unsupported message type")
	errInvalidPayload     = errors.New("invalid payload")
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type loginPayload struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type navigatePayload struct {
	Target string `json:"target"`
}

type quizPayload struct {
	QuizID string `json:"quizId"`
}

type indexPayload struct {
	Index *int `json:"index"`
}

// decodeAction maps a websocket message onto a session action.
func decodeAction(msg inboundMessage, share, clipboard app.ShareTarget) (app.Action, error) {
	switch msg.Type {
	case "login":
		var p loginPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		return app.Login{Identity: domain.Identity{ID: p.ID, Name: p.Name, Email: p.Email}}, nil
	case "logout":
		return app.Logout{}, nil
	case "navigate":
		var p navigatePayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		nav := app.Navigate{Target: p.Target}
		switch domain.Page(p.Target) {
		case domain.PageCreate, domain.PageBrowse:
			return app.RequireIdentity{Then: nav}, nil
		}
		return nav, nil
	case "take":
		var p quizPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		return app.Navigate{Target: app.TakePrefix + p.QuizID}, nil
	case "retake":
		var p quizPayload
		if err := decodePayload(msg.Payload, &p); err != nil {
			return nil, err
		}
		return app.Retake{QuizID: p.QuizID}, nil
	case "closeAuth":
		return app.CloseAuthPrompt{}, nil
	case "filter":
		var f app.BrowseFilter
		if err := decodePayload(msg.Payload, &f); err != nil {
			return nil, err
		}
		return app.SetFilter{Filter: f}, nil
	case "select":
		idx, err := decodeIndex(msg.Payload)
		if err != nil {
			return nil, err
		}
		return app.SelectAnswer{Index: idx}, nil
	case "next":
		return app.Advance{}, nil
	case "previous":
		return app.Retreat{}, nil
	case "jump":
		idx, err := decodeIndex(msg.Payload)
		if err != nil {
			return nil, err
		}
		return app.JumpTo{Index: idx}, nil
	case "save":
		var draft domain.QuizDraft
		if err := decodePayload(msg.Payload, &draft); err != nil {
			return nil, err
		}
		return app.SaveQuiz{Draft: draft}, nil
	case "share":
		return app.ShareResult{Primary: share, Fallback: clipboard}, nil
	}
	return nil, errUnsupportedMessage
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return errInvalidPayload
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("%w: %v", errInvalidPayload, err)
	}
	return nil
}

func decodeIndex(raw json.RawMessage) (int, error) {
	var p indexPayload
	if err := decodePayload(raw, &p); err != nil {
		return 0, err
	}
	if p.Index == nil {
		return 0, fmt.Errorf("%w: missing index", errInvalidPayload)
	}
	return *p.Index, nil
}
