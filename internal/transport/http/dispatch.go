package http

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"

	"studyplan-engine/internal/app"
	"studyplan-engine/internal/domain"
)

type selectPayload struct {
	Topic       string `json:"topic"`
	Explanation string `json:"explanation"`
}

type tabPayload struct {
	Tab app.Tab `json:"tab"`
}

type answerPayload struct {
	Question int    `json:"question"`
	Letter   string `json:"letter"`
}

type jumpPayload struct {
	Index int `json:"index"`
}

type deletePayload struct {
	Kind     domain.TargetKind `json:"kind"`
	All      bool              `json:"all"`
	TargetID string            `json:"targetId"`
	Title    string            `json:"title"`
}

type roadmapPayload struct {
	RoadmapID string `json:"roadmapId"`
}

type setTopicPayload struct {
	WeekID string `json:"weekId"`
	Topic  int    `json:"topic"`
	Done   bool   `json:"done"`
}

var errNoRoadmap = errors.New("no roadmap open")

// dispatcher maps inbound messages onto workspace operations. Study changes
// reach the client through the study subscription; replies here cover the
// parts that have no subscription of their own.
type dispatcher struct {
	workspace *app.Workspace
	log       *zap.Logger
}

func (d *dispatcher) handle(ctx context.Context, in inboundMessage) []outboundMessage[any] {
	w := d.workspace
	study := w.Study

	switch in.Type {
	case "select":
		var p selectPayload
		if err := decode(in.Payload, &p); err != nil {
			return errorReply("invalid select payload")
		}
		study.Select(ctx, domain.Subject{Topic: p.Topic, Explanation: p.Explanation})
	case "tab":
		var p tabPayload
		if err := decode(in.Payload, &p); err != nil || !validTab(p.Tab) {
			return errorReply("invalid tab payload")
		}
		study.ShowTab(ctx, p.Tab)
	case "regenerate":
		study.Regenerate(ctx)
	case "answer":
		var p answerPayload
		if err := decode(in.Payload, &p); err != nil {
			return errorReply("invalid answer payload")
		}
		if err := study.SelectAnswer(p.Question, p.Letter); err != nil {
			return errorReply(err.Error())
		}
	case "submit":
		res, err := study.SubmitQuiz()
		if err != nil {
			return errorReply(err.Error())
		}
		return reply("quizResult", res)
	case "retry":
		study.RetryQuiz()
	case "dismissResults":
		study.DismissResults()
	case "next":
		study.NextCard()
	case "previous":
		study.PreviousCard()
	case "flip":
		study.FlipCard()
	case "jump":
		var p jumpPayload
		if err := decode(in.Payload, &p); err != nil || !study.JumpToCard(p.Index) {
			return errorReply("invalid card index")
		}

	case "requestDelete":
		var p deletePayload
		if err := decode(in.Payload, &p); err != nil {
			return errorReply("invalid delete payload")
		}
		if _, err := w.Deletes.RequestDelete(p.Kind, p.All, p.TargetID, p.Title); err != nil {
			return errorReply(err.Error())
		}
		return reply("delete", w.Deletes.View())
	case "confirmDelete":
		err := w.Deletes.Confirm(ctx)
		if errors.Is(err, domain.ErrNoPendingDelete) {
			return errorReply(err.Error())
		}
		// A failed commit is reported through the coordinator's notice.
		return []outboundMessage[any]{
			{Type: "delete", Payload: w.Deletes.View()},
			{Type: "library", Payload: w.Library.Summary()},
		}
	case "cancelDelete":
		if err := w.Deletes.Cancel(); err != nil {
			return errorReply(err.Error())
		}
		return reply("delete", w.Deletes.View())
	case "dismissNotice":
		w.Deletes.DismissNotice()
		return reply("delete", w.Deletes.View())

	case "openRoadmap":
		var p roadmapPayload
		if err := decode(in.Payload, &p); err != nil {
			return errorReply("invalid roadmap payload")
		}
		t, err := w.OpenRoadmap(ctx, p.RoadmapID)
		if err != nil {
			return errorReply(err.Error())
		}
		return reply("roadmap", t.View())
	case "nextTopic", "prevTopic":
		t, ok := w.Tracker()
		if !ok {
			return errorReply(errNoRoadmap.Error())
		}
		move := t.Next
		if in.Type == "prevTopic" {
			move = t.Prev
		}
		// Moving the cursor only switches topics; content follows the
		// client's select with the topic's explanation.
		if topic, moved := move(); moved {
			study.Select(ctx, domain.Subject{Topic: topic})
		}
		return reply("roadmap", t.View())
	case "toggleTopic":
		t, ok := w.Tracker()
		if !ok {
			return errorReply(errNoRoadmap.Error())
		}
		if err := t.ToggleCurrent(ctx); err != nil {
			return errorReply(err.Error())
		}
		return d.roadmapChanged(t)
	case "setTopic":
		t, ok := w.Tracker()
		if !ok {
			return errorReply(errNoRoadmap.Error())
		}
		var p setTopicPayload
		if err := decode(in.Payload, &p); err != nil {
			return errorReply("invalid topic payload")
		}
		if err := t.SetTopic(ctx, p.WeekID, p.Topic, p.Done); err != nil {
			return errorReply(err.Error())
		}
		return d.roadmapChanged(t)

	default:
		return errorReply("unsupported message type")
	}
	return nil
}

func (d *dispatcher) roadmapChanged(t *app.Tracker) []outboundMessage[any] {
	d.log.Debug("topic completion changed")
	return reply("roadmap", t.View())
}

var inboundTypes = map[string]bool{
	"select": true, "tab": true, "regenerate": true, "answer": true, "submit": true,
	"retry": true, "dismissResults": true, "next": true, "previous": true, "flip": true,
	"jump": true, "requestDelete": true, "confirmDelete": true, "cancelDelete": true,
	"dismissNotice": true, "openRoadmap": true, "nextTopic": true, "prevTopic": true,
	"toggleTopic": true, "setTopic": true,
}

// metricType keeps client-chosen strings out of metric labels.
func metricType(typ string) string {
	if inboundTypes[typ] {
		return typ
	}
	return "unknown"
}

func decode(raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return errors.New("empty payload")
	}
	return json.Unmarshal(raw, v)
}

func validTab(tab app.Tab) bool {
	switch tab {
	case app.TabContent, app.TabQuiz, app.TabFlashcards:
		return true
	}
	return false
}

func reply(typ string, payload any) []outboundMessage[any] {
	return []outboundMessage[any]{{Type: typ, Payload: payload}}
}

func errorReply(message string) []outboundMessage[any] {
	return reply("error", errorPayload{Message: message})
}
