package location

import (
	"context"
	"errors"
	"strconv"
)

// ID uniquely identifies a point in the trade-lane data.
type ID int64

func (id ID) String() string { return strconv.FormatInt(int64(id), 10) }

// ParseID parses a point identifier as it arrives from a client.
func ParseID(s string) (ID, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n <= 0 {
		return 0, ErrInvalidID
	}
	return ID(n), nil
}

// Lang is a two letter language code used by point aliases.
type Lang string

// Supported alias languages.
const (
	RU Lang = "ru"
	EN Lang = "en"
)

// Alias is a localized name of a point.
type Alias struct {
	Lang Lang
	Name string
	Main bool
}

// Point is a place where a leg may start or end. Points may nest under a
// parent, usually a country node.
type Point struct {
	ID       ID
	City     string
	Country  string
	Aliases  []Alias
	ParentID *ID
}

// Name returns the main alias of the point in the given language, falling back
// to the city name.
func (p *Point) Name(lang Lang) string {
	for _, a := range p.Aliases {
		if a.Lang == lang && a.Main {
			return a.Name
		}
	}
	return p.City
}

// IsRoot reports whether the point has no parent node.
func (p *Point) IsRoot() bool {
	return p.ParentID == nil
}

// ErrUnknown is used when a point can't be found.
var ErrUnknown = errors.New("unknown location")

// ErrInvalidID is used when a point identifier is malformed.
var ErrInvalidID = errors.New("invalid location id")

// Repository represents a point store.
type Repository interface {
	Find(ctx context.Context, id ID) (*Point, error)
	FindAll(ctx context.Context) ([]*Point, error)
}
