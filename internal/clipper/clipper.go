package clipper

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"mealprep/internal/recipe"
)

// noise is removed before anything is extracted.
const noise = "script, style, nav, footer, iframe, ads, .ads, #ads, aside, form"

var (
	ingredientsHeading = regexp.MustCompile(`(?i)\bingredients?\b`)
	stepsHeading       = regexp.MustCompile(`(?i)\b(instructions|directions|method|steps|preparation)\b`)
	servingsPattern    = regexp.MustCompile(`(?i)\b(?:serves|servings|yield|makes)\b\s*:?\s*(\d+)`)
)

// unicodeFractions maps vulgar fraction characters to plain fractions.
var unicodeFractions = strings.NewReplacer(
	"½", " 1/2", "⅓", " 1/3", "⅔", " 2/3", "¼", " 1/4", "¾", " 3/4",
	"⅛", " 1/8", "⅜", " 3/8", "⅝", " 5/8", "⅞", " 7/8",
	"⁄", "/",
)

// Draft is a recipe extracted from a web page, ready to be checked against
// the bank and created.
type Draft struct {
	Source   string
	Name     string
	Servings int
	Entries  []recipe.Entry
	Steps    []string
	// Skipped holds ingredient lines whose quantity could not be read.
	Skipped []string
}

// Clipper handles fetching and extracting recipes from URLs.
type Clipper struct {
	client *http.Client
}

// NewClipper creates a new Clipper instance. A zero timeout means 15s.
func NewClipper(timeout time.Duration) *Clipper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Clipper{client: &http.Client{Timeout: timeout}}
}

// Clip extracts a draft from an http(s) URL or a local HTML file.
func (c *Clipper) Clip(ctx context.Context, target string) (*Draft, error) {
	if strings.HasPrefix(target, "http://") || strings.HasPrefix(target, "https://") {
		return c.ClipURL(ctx, target)
	}
	return ClipFile(target)
}

// ClipURL fetches the URL and extracts a recipe draft from it.
func (c *Clipper) ClipURL(ctx context.Context, url string) (*Draft, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch content: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch URL: status %d", resp.StatusCode)
	}
	return Extract(resp.Body, url)
}

// ClipFile extracts a recipe draft from a saved HTML page.
func ClipFile(path string) (*Draft, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()
	return Extract(f, path)
}

// Extract reads an HTML page. The name is the first h1 (or the title), the
// ingredients are the list following a heading mentioning "Ingredients" and
// the steps the list following an "Instructions", "Directions" or "Method"
// heading.
func Extract(r io.Reader, source string) (*Draft, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	// Remove noise
	doc.Find(noise).Each(func(i int, s *goquery.Selection) {
		s.Remove()
	})

	d := &Draft{Source: source}
	d.Name = recipeName(doc.Find("h1").First().Text())
	if d.Name == "" {
		d.Name = recipeName(doc.Find("title").First().Text())
	}
	if d.Name == "" {
		return nil, fmt.Errorf("no recipe title found in %s", source)
	}

	ingredients := listAfterHeading(doc, ingredientsHeading)
	if ingredients.Length() == 0 {
		ingredients = doc.Find(`[itemprop="recipeIngredient"], .ingredients li`)
	}
	ingredients.Each(func(i int, s *goquery.Selection) {
		text := cleanText(s.Text())
		if text == "" {
			return
		}
		if e, ok := ParseIngredient(text); ok {
			d.Entries = append(d.Entries, e)
		} else {
			d.Skipped = append(d.Skipped, text)
		}
	})
	if len(d.Entries) == 0 && len(d.Skipped) == 0 {
		return nil, fmt.Errorf("no ingredient list found in %s", source)
	}

	steps := listAfterHeading(doc, stepsHeading)
	if steps.Length() == 0 {
		steps = doc.Find(`[itemprop="recipeInstructions"] li, [itemprop="recipeInstructions"] p, .instructions li`)
	}
	steps.Each(func(i int, s *goquery.Selection) {
		if text := cleanText(s.Text()); text != "" {
			d.Steps = append(d.Steps, text)
		}
	})

	if m := servingsPattern.FindStringSubmatch(doc.Find("body").Text()); m != nil {
		d.Servings, _ = strconv.Atoi(m[1])
	}
	return d, nil
}

// listAfterHeading returns the items of the first list that follows a
// heading matching pattern, either as a sibling or as a sibling of the
// heading's parent.
func listAfterHeading(doc *goquery.Document, pattern *regexp.Regexp) *goquery.Selection {
	var items *goquery.Selection
	doc.Find("h1, h2, h3, h4, h5").EachWithBreak(func(i int, h *goquery.Selection) bool {
		if !pattern.MatchString(h.Text()) {
			return true
		}
		list := h.NextAllFiltered("ul, ol").First()
		if list.Length() == 0 {
			list = h.Parent().NextAllFiltered("ul, ol").First()
		}
		if list.Length() == 0 {
			list = h.Parent().Find("ul, ol").First()
		}
		if list.Length() == 0 {
			return true
		}
		items = list.Find("li")
		return false
	})
	if items == nil {
		return doc.Find("li.__none__")
	}
	return items
}

// ParseIngredient reads "<quantity> [unit] <name>" from a free-text
// ingredient line. Trailing notes after a comma or in parentheses are
// dropped. A line with no leading quantity is rejected.
func ParseIngredient(text string) (recipe.Entry, bool) {
	text = unicodeFractions.Replace(text)
	if i := strings.IndexAny(text, ",("); i >= 0 {
		text = text[:i]
	}
	fields := strings.Fields(text)
	if len(fields) < 2 {
		return recipe.Entry{}, false
	}

	qtyLen := 0
	for _, n := range []int{2, 1} {
		if len(fields) > n {
			if _, err := recipe.ParseQuantity(strings.Join(fields[:n], " ")); err == nil {
				qtyLen = n
				break
			}
		}
	}
	if qtyLen == 0 {
		return recipe.Entry{}, false
	}

	qty := strings.Join(fields[:qtyLen], " ")
	rest := fields[qtyLen:]
	if len(rest) == 1 {
		return recipe.Entry{Quantity: qty, Unit: "ea", Name: strings.ToLower(rest[0])}, true
	}
	return recipe.Entry{
		Quantity: qty,
		Unit:     strings.ToLower(rest[0]),
		Name:     strings.ToLower(strings.Join(rest[1:], " ")),
	}, true
}

// recipeName turns a page title into a name usable as a recipe file name.
func recipeName(title string) string {
	name := strings.NewReplacer("/", "-", `\`, "-").Replace(cleanText(title))
	return strings.TrimSpace(strings.TrimLeft(name, "."))
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
