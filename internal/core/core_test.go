package core

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"
)

func TestItemJSONUsesTypeTag(t *testing.T) {
	at := int64(1700000000000)
	it := Item{
		ID:        "a1",
		CreatedAt: 1,
		UpdatedAt: 2,
		Stats:     Stats{YesCount: 3, DisplayCount: 4, LastDeliveredAt: &at},
		Content:   Playbook{Title: "Morning", Steps: []string{"water", "stretch"}},
		Tags:      []string{"health"},
	}
	data, err := json.Marshal(it)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"type":"playbook"`) {
		t.Errorf("missing type tag: %s", data)
	}
	if !strings.Contains(string(data), `"content":{"title":"Morning","steps":["water","stretch"]}`) {
		t.Errorf("unexpected content encoding: %s", data)
	}

	var back Item
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(back, it) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", back, it)
	}
}

func TestPlaybookWithoutStepsEncodesEmptyList(t *testing.T) {
	data, err := json.Marshal(Item{ID: "p", Content: Playbook{Title: "Evening"}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(data), `"steps":[]`) {
		t.Errorf("steps not encoded as a list: %s", data)
	}
}

func TestRetiredItemFlattensDeletedAt(t *testing.T) {
	r := RetiredItem{
		Item:      Item{ID: "r1", Content: Nudge{Text: "breathe"}},
		DeletedAt: 42,
	}
	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var flat map[string]any
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("Unmarshal map: %v", err)
	}
	if flat["deletedAt"] != float64(42) || flat["id"] != "r1" || flat["type"] != "nudge" {
		t.Errorf("unexpected flat shape: %v", flat)
	}

	var back RetiredItem
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.DeletedAt != 42 || back.MainText() != "breathe" {
		t.Errorf("got %+v", back)
	}
}

func TestDecodePersistedDocument(t *testing.T) {
	// Shape written by earlier installs: optional fields absent.
	raw := `{
		"activeItems":[{"id":"x","type":"lifeCard","createdAt":1,"updatedAt":1,
			"stats":{"yesCount":0,"noCount":0,"skipCount":0,"displayCount":0},
			"content":{"phrase":"You are enough"}}],
		"deleteBox":[],
		"deliveries":[{"id":"d","itemId":"x","deliveredAt":5,"feedbackAsked":true,"feedbackGiven":"SKIP"}]
	}`
	var doc Document
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if len(doc.ActiveItems) != 1 || doc.ActiveItems[0].Kind() != KindLifeCard {
		t.Fatalf("active items = %+v", doc.ActiveItems)
	}
	if got := doc.Deliveries[0].FeedbackGiven; got == nil || *got != FeedbackSkip {
		t.Errorf("feedbackGiven = %v, want SKIP", got)
	}
	if doc.Deliveries[0].AwaitingFeedback() {
		t.Error("answered delivery should not await feedback")
	}
}

func TestUnknownTypeRejected(t *testing.T) {
	var it Item
	err := json.Unmarshal([]byte(`{"id":"q","type":"quote","content":{}}`), &it)
	if err == nil {
		t.Fatal("expected error for unknown type")
	}
}

func TestTitleAndMainText(t *testing.T) {
	tests := []struct {
		name  string
		c     Content
		title string
		main  string
	}{
		{"card with title", LifeCard{Title: "T", Phrase: "P"}, "T", "P"},
		{"card without title", LifeCard{Phrase: "P"}, "P", "P"},
		{"nudge", Nudge{Text: "N"}, "N", "N"},
		{"playbook", Playbook{Title: "PB", Steps: []string{"1"}}, "PB", "PB"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := Item{Content: tt.c}
			if got := it.Title(); got != tt.title {
				t.Errorf("Title = %q, want %q", got, tt.title)
			}
			if got := it.MainText(); got != tt.main {
				t.Errorf("MainText = %q, want %q", got, tt.main)
			}
		})
	}
}

func TestValidateAllowsEmptyOptionalFields(t *testing.T) {
	if err := (LifeCard{Phrase: "ok"}).Validate(); err != nil {
		t.Errorf("card: %v", err)
	}
	if err := (Playbook{Title: "ok"}).Validate(); err != nil {
		t.Errorf("playbook without steps: %v", err)
	}
	if err := (Nudge{Text: "  "}).Validate(); err == nil {
		t.Error("blank nudge should be invalid")
	}
}

func TestCloneIsDeep(t *testing.T) {
	at := int64(10)
	doc := NewDocument()
	doc.ActiveItems = append(doc.ActiveItems, Item{
		ID:      "a",
		Content: Playbook{Title: "p", Steps: []string{"one"}},
		Tags:    []string{"t"},
		Stats:   Stats{LastDeliveredAt: &at},
	})

	cp := doc.Clone()
	cp.ActiveItems[0].Tags[0] = "changed"
	*cp.ActiveItems[0].Stats.LastDeliveredAt = 99
	cp.ActiveItems[0].Content.(Playbook).Steps[0] = "changed"

	orig := doc.ActiveItems[0]
	if orig.Tags[0] != "t" || *orig.Stats.LastDeliveredAt != 10 || orig.Content.(Playbook).Steps[0] != "one" {
		t.Errorf("clone shares state with original: %+v", orig)
	}
}

func TestParseTags(t *testing.T) {
	got := ParseTags(" work, Work ,, work,café, café ")
	want := []string{"work", "Work", "café"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseTags = %q, want %q", got, want)
	}
	if ParseTags(" , ") != nil {
		t.Error("expected nil for no tags")
	}
}

func TestParseFeedback(t *testing.T) {
	if f, err := ParseFeedback("yes"); err != nil || f != FeedbackYes {
		t.Errorf("ParseFeedback(yes) = %v, %v", f, err)
	}
	if _, err := ParseFeedback("maybe"); err == nil {
		t.Error("expected error for maybe")
	}
}
