package location

func ptr(id ID) *ID { return &id }

// Sample country nodes.
var (
	Russia = &Point{ID: 1, City: "Russia", Country: "Russia", Aliases: []Alias{{RU, "Россия", true}, {EN, "Russia", true}}}
	China  = &Point{ID: 2, City: "China", Country: "China", Aliases: []Alias{{RU, "Китай", true}, {EN, "China", true}}}
)

// Sample points.
var (
	Shanghai    = &Point{ID: 6, City: "Shanghai", Country: "China", ParentID: ptr(2), Aliases: []Alias{{RU, "Шанхай", true}}}
	Ningbo      = &Point{ID: 7, City: "Ningbo", Country: "China", ParentID: ptr(2), Aliases: []Alias{{RU, "Нинбо", true}}}
	Vladivostok = &Point{ID: 20, City: "Vladivostok", Country: "Russia", ParentID: ptr(1), Aliases: []Alias{{RU, "Владивосток", true}}}
	Vostochny   = &Point{ID: 21, City: "Vostochny", Country: "Russia", ParentID: ptr(1), Aliases: []Alias{{RU, "Восточный", true}}}
	Novosibirsk = &Point{ID: 50, City: "Novosibirsk", Country: "Russia", ParentID: ptr(1), Aliases: []Alias{{RU, "Новосибирск", true}}}
	Moscow      = &Point{ID: 82, City: "Moscow", Country: "Russia", ParentID: ptr(1), Aliases: []Alias{{RU, "Москва", true}}}
)

// SamplePoints lists every sample point, country nodes included.
func SamplePoints() []*Point {
	return []*Point{Russia, China, Shanghai, Ningbo, Vladivostok, Vostochny, Novosibirsk, Moscow}
}
