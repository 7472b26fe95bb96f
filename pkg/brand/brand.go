// Package brand models brand guidelines as data: color palettes, approved
// fonts, tone vocabulary, and banned terms. The guidelines drive the content
// validator in this package and the corpus linter. Nothing here generates or
// styles documents; that happens in the hosted execution environment.
package brand

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed assets/acme.yaml
var defaultGuidelines []byte

// Color is one palette entry. Hex and RGB express the same value twice; the
// redundancy is deliberate (designers copy whichever form their tool wants)
// and Validate keeps the two in agreement.
type Color struct {
	Name string `yaml:"name"`
	Hex  string `yaml:"hex"`
	RGB  []int  `yaml:"rgb"`
}

// Validate enforces the palette invariant: a 6-digit hex code that decodes
// to exactly the declared RGB triple.
func (c Color) Validate() error {
	r, g, b, err := ParseHex(c.Hex)
	if err != nil {
		return errors.Wrapf(err, "color %q", c.Name)
	}
	if len(c.RGB) != 3 {
		return errors.Errorf("color %q: rgb must have 3 components, got %d", c.Name, len(c.RGB))
	}
	for _, v := range c.RGB {
		if v < 0 || v > 255 {
			return errors.Errorf("color %q: rgb component %d out of range", c.Name, v)
		}
	}
	if int(r) != c.RGB[0] || int(g) != c.RGB[1] || int(b) != c.RGB[2] {
		return errors.Errorf("color %q: hex %s decodes to (%d, %d, %d) but rgb declares (%d, %d, %d)",
			c.Name, c.Hex, r, g, b, c.RGB[0], c.RGB[1], c.RGB[2])
	}
	return nil
}

// ParseHex decodes a #RRGGBB color. Shorthand #RGB is rejected: the
// guidelines require the full 6-digit form.
func ParseHex(hex string) (r, g, b uint8, err error) {
	if !strings.HasPrefix(hex, "#") {
		return 0, 0, 0, errors.Errorf("hex code %q must start with #", hex)
	}
	digits := hex[1:]
	if len(digits) != 6 {
		return 0, 0, 0, errors.Errorf("hex code %q must have exactly 6 digits", hex)
	}
	var rv, gv, bv int
	if _, err := fmt.Sscanf(strings.ToLower(digits), "%02x%02x%02x", &rv, &gv, &bv); err != nil {
		return 0, 0, 0, errors.Errorf("hex code %q is not valid hexadecimal", hex)
	}
	return uint8(rv), uint8(gv), uint8(bv), nil
}

// Fonts holds the approved typography.
type Fonts struct {
	Primary   string         `yaml:"primary"`
	Secondary string         `yaml:"secondary"`
	Fallbacks []string       `yaml:"fallbacks"`
	Sizes     map[string]int `yaml:"sizes"`
	Weights   map[string]int `yaml:"weights"`
}

// Approved returns every font name the guidelines accept.
func (f Fonts) Approved() []string {
	out := make([]string, 0, 2+len(f.Fallbacks))
	if f.Primary != "" {
		out = append(out, f.Primary)
	}
	if f.Secondary != "" {
		out = append(out, f.Secondary)
	}
	out = append(out, f.Fallbacks...)
	return out
}

// Guidelines is the full brand definition.
type Guidelines struct {
	BrandName       string   `yaml:"brand_name"`
	Tagline         string   `yaml:"tagline"`
	PrimaryColors   []Color  `yaml:"primary_colors"`
	SecondaryColors []Color  `yaml:"secondary_colors"`
	Fonts           Fonts    `yaml:"fonts"`
	ToneKeywords    []string `yaml:"tone_keywords"`
	ProhibitedWords []string `yaml:"prohibited_words"`
	// ExcludedTokens are vendor-specific terms that must not appear
	// anywhere in the corpus. The linter enforces this corpus-wide.
	ExcludedTokens []string `yaml:"excluded_tokens"`
}

// Default returns the embedded guidelines. The embedded file is validated by
// tests, so a decode failure here is a build defect; it panics rather than
// letting a half-initialized brand through.
func Default() *Guidelines {
	g, err := Parse(defaultGuidelines)
	if err != nil {
		panic(fmt.Sprintf("embedded guidelines invalid: %v", err))
	}
	return g
}

// Load reads and validates guidelines from a YAML file. An empty path loads
// the embedded defaults.
func Load(path string) (*Guidelines, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading guidelines %s", path)
	}
	g, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "guidelines %s", path)
	}
	return g, nil
}

// Parse decodes and validates guidelines YAML.
func Parse(data []byte) (*Guidelines, error) {
	var g Guidelines
	if err := yaml.Unmarshal(data, &g); err != nil {
		return nil, errors.Wrap(err, "decoding guidelines YAML")
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return &g, nil
}

// Validate checks structural rules: a brand name, at least one primary
// color, unique color names, and the hex/RGB invariant on every entry.
func (g *Guidelines) Validate() error {
	var result *multierror.Error

	if strings.TrimSpace(g.BrandName) == "" {
		result = multierror.Append(result, errors.New("brand_name is required"))
	}
	if len(g.PrimaryColors) == 0 {
		result = multierror.Append(result, errors.New("at least one primary color is required"))
	}

	seen := map[string]struct{}{}
	for _, c := range g.AllColors() {
		if err := c.Validate(); err != nil {
			result = multierror.Append(result, err)
		}
		key := strings.ToLower(c.Name)
		if _, dup := seen[key]; dup {
			result = multierror.Append(result, errors.Errorf("duplicate color name %q", c.Name))
		}
		seen[key] = struct{}{}
	}

	for label, size := range g.Fonts.Sizes {
		if size <= 0 {
			result = multierror.Append(result, errors.Errorf("font size %q must be positive", label))
		}
	}

	return result.ErrorOrNil()
}

// AllColors returns primary then secondary palette entries.
func (g *Guidelines) AllColors() []Color {
	out := make([]Color, 0, len(g.PrimaryColors)+len(g.SecondaryColors))
	out = append(out, g.PrimaryColors...)
	out = append(out, g.SecondaryColors...)
	return out
}

// ApprovedHex returns the palette as a lowercase hex set for fast lookup.
func (g *Guidelines) ApprovedHex() map[string]struct{} {
	out := make(map[string]struct{})
	for _, c := range g.AllColors() {
		out[strings.ToLower(c.Hex)] = struct{}{}
	}
	return out
}

// ColorByHex finds the palette entry for a (case-insensitive) hex code.
func (g *Guidelines) ColorByHex(hex string) (Color, bool) {
	needle := strings.ToLower(hex)
	for _, c := range g.AllColors() {
		if strings.ToLower(c.Hex) == needle {
			return c, true
		}
	}
	return Color{}, false
}
