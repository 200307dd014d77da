// Package deckfile reads and writes decks as YAML documents for import and
// export.
package deckfile

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/abhisek/phraseweaver/internal/store"
)

// Version is the current deck file format version.
const Version = 1

// Deck is the document form of a deck.
type Deck struct {
	Version  int       `yaml:"version"`
	Name     string    `yaml:"name"`
	Lang     string    `yaml:"lang"`
	Concepts []Concept `yaml:"concepts"`
}

// Concept is one entry of a deck document.
type Concept struct {
	Keyword     string `yaml:"keyword"`
	Translation string `yaml:"translation"`
	Sentence    string `yaml:"sentence,omitempty"`
	Image       string `yaml:"image,omitempty"`
	Audio       string `yaml:"audio,omitempty"`
}

// Read decodes a deck document. Unknown fields are rejected so typos do
// not silently drop data.
func Read(r io.Reader) (*Deck, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var d Deck
	if err := dec.Decode(&d); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("read deck: empty document")
		}
		return nil, fmt.Errorf("read deck: %w", err)
	}
	if d.Version == 0 {
		d.Version = Version
	}
	if d.Version > Version {
		return nil, fmt.Errorf("read deck: unsupported version %d", d.Version)
	}
	return &d, nil
}

// Write encodes d as YAML.
func Write(w io.Writer, d *Deck) error {
	out := *d
	if out.Version == 0 {
		out.Version = Version
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("write deck: %w", err)
	}
	return enc.Close()
}

// Validate checks that the deck has a name and that every concept has a
// keyword and a translation. All problems are reported together.
func (d *Deck) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	for i, c := range d.Concepts {
		if strings.TrimSpace(c.Keyword) == "" {
			errs = append(errs, fmt.Errorf("concept %d: keyword is required", i+1))
		}
		if strings.TrimSpace(c.Translation) == "" {
			errs = append(errs, fmt.Errorf("concept %d: translation is required", i+1))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid deck: %w", errors.Join(errs...))
	}
	return nil
}

// NewConcept converts a document entry into store input.
func (c Concept) NewConcept() store.NewConcept {
	return store.NewConcept{
		Keyword:     c.Keyword,
		Translation: c.Translation,
		Sentence:    c.Sentence,
		ImagePath:   c.Image,
		AudioPath:   c.Audio,
	}
}

// FromStore builds a document from a stored deck and its concepts.
func FromStore(deck store.Deck, concepts []store.Concept) *Deck {
	d := &Deck{
		Version:  Version,
		Name:     deck.Name,
		Lang:     deck.LangCode,
		Concepts: make([]Concept, 0, len(concepts)),
	}
	for _, c := range concepts {
		d.Concepts = append(d.Concepts, Concept{
			Keyword:     c.Keyword,
			Translation: c.Translation,
			Sentence:    c.Sentence,
			Image:       c.ImagePath,
			Audio:       c.AudioPath,
		})
	}
	return d
}
