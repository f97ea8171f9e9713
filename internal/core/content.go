package core

import (
	"fmt"
	"slices"
	"strings"
)

// Kind identifies which content shape an item carries.
type Kind string

const (
	KindLifeCard Kind = "lifeCard"
	KindNudge    Kind = "nudge"
	KindPlaybook Kind = "playbook"
)

// ParseKind accepts the wire tag or a loose spelling ("life-card", "Playbook").
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "-", "")) {
	case "lifecard", "card", "phrase":
		return KindLifeCard, nil
	case "nudge":
		return KindNudge, nil
	case "playbook":
		return KindPlaybook, nil
	}
	return "", fmt.Errorf("unknown item type %q", s)
}

// Label is the human-facing name of the kind.
func (k Kind) Label() string {
	switch k {
	case KindLifeCard:
		return "Life Card"
	case KindNudge:
		return "Nudge"
	case KindPlaybook:
		return "Playbook"
	}
	return string(k)
}

// Content is the sum of the three item shapes. It is sealed: only
// LifeCard, Nudge and Playbook implement it.
type Content interface {
	Kind() Kind
	// Validate reports a missing required field. Optional fields may be empty.
	Validate() error
	clone() Content
}

// LifeCard is a short life-affirming phrase with an optional title and image.
type LifeCard struct {
	Title    string `json:"title,omitempty"`
	Phrase   string `json:"phrase"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Nudge is a short text reminder with an optional image.
type Nudge struct {
	Text     string `json:"text"`
	ImageURL string `json:"imageUrl,omitempty"`
}

// Playbook is a titled, ordered list of steps with an optional image.
type Playbook struct {
	Title    string   `json:"title"`
	Steps    []string `json:"steps"`
	ImageURL string   `json:"imageUrl,omitempty"`
}

func (LifeCard) Kind() Kind { return KindLifeCard }
func (Nudge) Kind() Kind    { return KindNudge }
func (Playbook) Kind() Kind { return KindPlaybook }

func (c LifeCard) Validate() error {
	if strings.TrimSpace(c.Phrase) == "" {
		return fmt.Errorf("life card: phrase is required")
	}
	return nil
}

func (c Nudge) Validate() error {
	if strings.TrimSpace(c.Text) == "" {
		return fmt.Errorf("nudge: text is required")
	}
	return nil
}

func (c Playbook) Validate() error {
	if strings.TrimSpace(c.Title) == "" {
		return fmt.Errorf("playbook: title is required")
	}
	return nil
}

func (c LifeCard) clone() Content { return c }
func (c Nudge) clone() Content    { return c }

func (c Playbook) clone() Content {
	c.Steps = slices.Clone(c.Steps)
	return c
}

// CloneContent returns a copy of c that shares no mutable state with it.
func CloneContent(c Content) Content {
	if c == nil {
		return nil
	}
	return c.clone()
}
