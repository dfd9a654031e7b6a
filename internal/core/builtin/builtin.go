// Package builtin provides the stock capability types available to template
// documents.
package builtin

import (
	"errors"
	"fmt"

	"github.com/zeusync/compose/internal/core/entity"
	"github.com/zeusync/compose/internal/core/observability/log"
	"github.com/zeusync/compose/internal/core/script"
	"github.com/zeusync/compose/internal/core/template"
)

const (
	TypeTrace   = "trace"
	TypeCounter = "counter"
	TypeTagger  = "tagger"
	TypeLua     = "lua"
)

var ErrMissingScript = errors.New("lua capability needs a source or path param")

// Register adds every builtin type to reg.
func Register(reg *template.Registry, logger log.Log) error {
	if logger == nil {
		logger = log.NewNop()
	}

	ctors := map[string]template.Constructor{
		TypeTrace: func(template.Params) (entity.Capability, error) {
			return NewTrace(logger), nil
		},
		TypeCounter: func(p template.Params) (entity.Capability, error) {
			return NewCounter(p.String("key", "ticks")), nil
		},
		TypeTagger: func(p template.Params) (entity.Capability, error) {
			return NewTagger(p.Strings("tags")...), nil
		},
		TypeLua: func(p template.Params) (entity.Capability, error) {
			if path := p.String("path", ""); path != "" {
				return script.Load(path, logger)
			}
			if src := p.String("source", ""); src != "" {
				return script.New(p.String("name", "inline"), src, logger)
			}
			return nil, ErrMissingScript
		},
	}

	for _, name := range []string{TypeTrace, TypeCounter, TypeTagger, TypeLua} {
		if err := reg.Register(name, ctors[name]); err != nil {
			return fmt.Errorf("builtin: %w", err)
		}
	}
	return nil
}
