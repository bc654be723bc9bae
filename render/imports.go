package render

import (
	"go/token"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/a-peyrard/godeco/descriptor"
	"github.com/a-peyrard/godeco/ordered"
)

var versionSuffix = regexp.MustCompile(`^v[0-9]+$`)

type (
	// Imports allocates an alias to every package referenced by the rendered code.
	Imports struct {
		self    string
		aliases map[string]string
		taken   *ordered.Set[string]
	}

	// ImportSpec is one import of the generated file. The alias is always explicit,
	// as the package name cannot be inferred from the path.
	ImportSpec struct {
		Alias string
		Path  string
	}
)

// NewImports creates the imports of a file generated in the package self.
//
// Reserved names are never used as aliases, which keeps them free for identifiers
// of the generated code that would otherwise shadow a package.
func NewImports(self string, reserved ...string) *Imports {
	return &Imports{
		self:    self,
		aliases: make(map[string]string),
		taken:   ordered.NewSet(reserved...),
	}
}

// Qualify returns the name as referenced from the generated file.
func (i *Imports) Qualify(pkg, name string) string {
	if pkg == "" || pkg == i.self {
		return name
	}
	return i.Alias(pkg) + "." + name
}

// Alias returns the alias of the package, allocating it on first use.
func (i *Imports) Alias(pkg string) string {
	if alias, found := i.aliases[pkg]; found {
		return alias
	}
	alias := findSuitableAlias(pkg, i.taken)
	i.aliases[pkg] = alias
	i.taken.Add(alias)
	return alias
}

// Specs returns the imports sorted by path.
func (i *Imports) Specs() []ImportSpec {
	specs := make([]ImportSpec, 0, len(i.aliases))
	for pkg, alias := range i.aliases {
		specs = append(specs, ImportSpec{Alias: alias, Path: pkg})
	}
	sort.Slice(specs, func(a, b int) bool { return specs[a].Path < specs[b].Path })
	return specs
}

// PackageName guesses the name of the package at the import path.
func PackageName(path string) string {
	name, _ := baseToken(strings.Split(path, "/"))
	return name
}

// findSuitableAlias uses the last token of the path, prefixed by the initials of the
// previous tokens one by one while it collides, then suffixed by a counter.
func findSuitableAlias(pkg string, taken *ordered.Set[string]) string {
	tokens := strings.Split(pkg, "/")
	candidate, last := baseToken(tokens)
	if isFree(candidate, taken) {
		return candidate
	}

	for idx := last - 1; idx >= 0; idx-- {
		initial := initialOf(tokens[idx])
		if initial == "" {
			continue
		}
		candidate = initial + candidate
		if isFree(candidate, taken) {
			return candidate
		}
	}

	for counter := 0; ; counter++ {
		numbered := candidate + strconv.Itoa(counter)
		if isFree(numbered, taken) {
			return numbered
		}
	}
}

// baseToken returns the sanitized package name guessed from the path, and the index
// of the token it comes from. Major version suffixes such as "v2" are skipped.
func baseToken(tokens []string) (string, int) {
	last := len(tokens) - 1
	if last > 0 && versionSuffix.MatchString(tokens[last]) {
		last--
	}
	base := sanitize(tokens[last])
	if base == "" {
		base = "pkg"
	}
	return base, last
}

func isFree(candidate string, taken *ordered.Set[string]) bool {
	return !taken.Contains(candidate) && !token.IsKeyword(candidate) && !descriptor.IsBuiltin(candidate)
}

func initialOf(tok string) string {
	for _, r := range tok {
		if unicode.IsLetter(r) {
			return string(unicode.ToLower(r))
		}
	}
	return ""
}

func sanitize(tok string) string {
	var b strings.Builder
	for _, r := range tok {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out != "" && unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	return out
}
