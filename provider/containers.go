package provider

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/Qalifah/freight/container"
)

var (
	bandedName    = regexp.MustCompile(`\((\d+)'([^)]+)\)\D+(\d+)-(\d+)t$`)
	upperOnlyName = regexp.MustCompile(`\((\d+)'([^)]+)\)\D+(\d+)t$`)
	bareName      = regexp.MustCompile(`\((\d+)'([^)]+)\)$`)
)

// ParseContainer reads the size, type and weight band out of an English
// container table name such as "(20'DC) Dry 0-24t", "(40'HC) High cube 28t"
// or "(20'DC)". A name with only an upper weight starts the band at zero; a
// name without weights has an unbounded band.
func ParseContainer(name string) (container.Spec, bool) {
	var spec container.Spec
	if m := bandedName.FindStringSubmatch(name); m != nil {
		spec.Size, _ = strconv.Atoi(m[1])
		spec.Type = container.Type(m[2])
		spec.WeightFrom = decimal.RequireFromString(m[3])
		to := decimal.RequireFromString(m[4])
		spec.WeightTo = &to
	} else if m := upperOnlyName.FindStringSubmatch(name); m != nil {
		spec.Size, _ = strconv.Atoi(m[1])
		spec.Type = container.Type(m[2])
		to := decimal.RequireFromString(m[3])
		spec.WeightTo = &to
	} else if m := bareName.FindStringSubmatch(name); m != nil {
		spec.Size, _ = strconv.Atoi(m[1])
		spec.Type = container.Type(m[2])
	} else {
		return container.Spec{}, false
	}
	spec.Name = spec.DisplayName()
	return spec, true
}

// Match returns the codes of the container tables a cargo of the given weight
// in kilograms and nominal size fits into, smallest band first. Tables whose
// names can't be parsed are skipped.
func Match(tables []ContainerTable, kilograms int64, size int) []Code {
	type candidate struct {
		code Code
		spec container.Spec
	}
	var cs []candidate
	seen := make(map[Code]bool)
	for _, t := range tables {
		spec, ok := ParseContainer(t.NameEng)
		if !ok || seen[t.Code] || !spec.Fits(kilograms, size) {
			continue
		}
		seen[t.Code] = true
		cs = append(cs, candidate{t.Code, spec})
	}
	sort.SliceStable(cs, func(i, j int) bool {
		a, b := cs[i].spec.WeightTo, cs[j].spec.WeightTo
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.LessThan(*b)
	})
	codes := make([]Code, len(cs))
	for i, c := range cs {
		codes[i] = c.code
	}
	return codes
}
