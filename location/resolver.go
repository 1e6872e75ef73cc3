package location

import (
	"context"
	"fmt"
)

// Place is the display form of a point: its name and the name of the country
// it belongs to.
type Place struct {
	ID      ID     `json:"id"`
	Name    string `json:"name"`
	Country string `json:"country"`
}

// maxDepth bounds the parent walk so that a cycle in the reference data can't
// hang a request.
const maxDepth = 8

// Resolver turns point identifiers into places. It memoizes lookups and is
// meant to live for a single request.
type Resolver struct {
	repo  Repository
	lang  Lang
	cache map[ID]*Point
}

// NewResolver creates a request scoped resolver.
func NewResolver(repo Repository, lang Lang) *Resolver {
	return &Resolver{repo: repo, lang: lang, cache: make(map[ID]*Point)}
}

func (r *Resolver) find(ctx context.Context, id ID) (*Point, error) {
	if p, ok := r.cache[id]; ok {
		return p, nil
	}
	p, err := r.repo.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	r.cache[id] = p
	return p, nil
}

// Resolve returns the place for id. The country is the display name of the
// outermost parent, or the point's own country field for root points.
func (r *Resolver) Resolve(ctx context.Context, id ID) (Place, error) {
	p, err := r.find(ctx, id)
	if err != nil {
		return Place{}, err
	}
	country := p.Country
	root := p
	for depth := 0; !root.IsRoot(); depth++ {
		if depth == maxDepth {
			return Place{}, fmt.Errorf("point %s: parent chain too deep", id)
		}
		if root, err = r.find(ctx, *root.ParentID); err != nil {
			return Place{}, err
		}
		country = root.Name(r.lang)
	}
	return Place{ID: p.ID, Name: p.Name(r.lang), Country: country}, nil
}
