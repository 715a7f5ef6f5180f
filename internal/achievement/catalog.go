// Package achievement holds the title catalog and its unlock rules.
package achievement

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/d60-Lab/feelnote-core/internal/model"
)

//go:embed titles.yaml
var defaultCatalog []byte

type catalogFile struct {
	Titles []titleSpec `yaml:"titles" validate:"required,min=1,dive"`
}

type titleSpec struct {
	ID          string   `yaml:"id" validate:"required,max=64"`
	Name        string   `yaml:"name" validate:"required,max=64"`
	Description string   `yaml:"description" validate:"max=255"`
	Category    string   `yaml:"category" validate:"max=32"`
	Grade       string   `yaml:"grade" validate:"required,oneof=common uncommon rare epic legendary"`
	Bonus       int      `yaml:"bonus" validate:"gte=0"`
	Rule        ruleSpec `yaml:"rule" validate:"required"`
}

type ruleSpec struct {
	Stat      string `yaml:"stat" validate:"required"`
	Threshold int    `yaml:"threshold" validate:"gt=0"`
}

// Catalog is the immutable, ordered list of titles.
type Catalog struct {
	titles []model.AchievementTitle
	byID   map[string]int
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read title catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog. Catalog order is file order.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("decode title catalog: %w", err)
	}
	if err := validator.New().Struct(&f); err != nil {
		return nil, fmt.Errorf("invalid title catalog: %w", err)
	}

	c := &Catalog{byID: make(map[string]int, len(f.Titles))}
	for i, t := range f.Titles {
		if _, dup := c.byID[t.ID]; dup {
			return nil, fmt.Errorf("invalid title catalog: duplicate id %q", t.ID)
		}
		if !Known(StatKey(t.Rule.Stat)) {
			return nil, fmt.Errorf("invalid title catalog: title %q uses unknown stat %q", t.ID, t.Rule.Stat)
		}
		c.byID[t.ID] = i
		c.titles = append(c.titles, model.AchievementTitle{
			ID:            t.ID,
			Name:          t.Name,
			Description:   t.Description,
			Category:      t.Category,
			Grade:         model.Grade(t.Grade),
			BonusScore:    t.Bonus,
			RuleStat:      t.Rule.Stat,
			RuleThreshold: t.Rule.Threshold,
			SortOrder:     i,
		})
	}
	return c, nil
}

// NewCatalog builds a catalog from titles already in catalog order.
func NewCatalog(titles []model.AchievementTitle) *Catalog {
	c := &Catalog{byID: make(map[string]int, len(titles))}
	for i, t := range titles {
		t.SortOrder = i
		c.byID[t.ID] = i
		c.titles = append(c.titles, t)
	}
	return c
}

// Titles returns a copy in catalog order.
func (c *Catalog) Titles() []model.AchievementTitle {
	out := make([]model.AchievementTitle, len(c.titles))
	copy(out, c.titles)
	return out
}

func (c *Catalog) Get(id string) (model.AchievementTitle, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.AchievementTitle{}, false
	}
	return c.titles[i], true
}

func (c *Catalog) Len() int { return len(c.titles) }

// Satisfied evaluates a title's threshold rule against stats.
func Satisfied(t model.AchievementTitle, stats Stats) bool {
	return stats[StatKey(t.RuleStat)] >= int64(t.RuleThreshold)
}

// SortForDisplay orders titles by grade (common first) then catalog order.
func SortForDisplay(titles []model.AchievementTitle) {
	sort.SliceStable(titles, func(i, j int) bool {
		ri, rj := titles[i].Grade.Rank(), titles[j].Grade.Rank()
		if ri != rj {
			return ri < rj
		}
		return titles[i].SortOrder < titles[j].SortOrder
	})
}
