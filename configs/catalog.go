// Package configs loads the YAML catalog used to seed plans and courses.
package configs

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/gosimple/slug"
	"gopkg.in/yaml.v3"

	"qacart-backend-go/internal/models"
)

// DefaultCatalogPath is used when neither a flag nor PATH_CATALOG is given.
const DefaultCatalogPath = "configs/catalog.yaml"

// Catalog is the seed file layout.
type Catalog struct {
	Plans   []models.Plan   `yaml:"plans"`
	Courses []CatalogCourse `yaml:"courses"`
}

// CatalogCourse is a course with its lessons inline.
type CatalogCourse struct {
	ID          string          `yaml:"id"`
	Slug        string          `yaml:"slug"`
	Title       string          `yaml:"title"`
	TitleEn     string          `yaml:"titleEn"`
	Description string          `yaml:"description"`
	Level       string          `yaml:"level"`
	ImageURL    string          `yaml:"imageURL"`
	IsPremium   bool            `yaml:"isPremium"`
	IsPublished bool            `yaml:"isPublished"`
	Order       int             `yaml:"order"`
	Lessons     []CatalogLesson `yaml:"lessons"`
}

// CatalogLesson is a lesson entry of a CatalogCourse.
type CatalogLesson struct {
	ID              string `yaml:"id"`
	Title           string `yaml:"title"`
	TitleEn         string `yaml:"titleEn"`
	VideoURL        string `yaml:"videoURL"`
	DurationMinutes int    `yaml:"durationMinutes"`
	IsFree          bool   `yaml:"isFree"`
}

// LoadCatalog reads and validates the catalog at path. An empty path falls
// back to PATH_CATALOG and then DefaultCatalogPath.
func LoadCatalog(path string) (*Catalog, error) {
	if path == "" {
		path = os.Getenv("PATH_CATALOG")
	}
	if path == "" {
		path = DefaultCatalogPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates catalog YAML.
func ParseCatalog(data []byte) (*Catalog, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := catalog.validate(); err != nil {
		return nil, err
	}
	return &catalog, nil
}

func (c *Catalog) validate() error {
	for i, p := range c.Plans {
		if p.ID == "" || p.StripePriceID == "" {
			return fmt.Errorf("plan #%d: id and stripePriceId are required", i+1)
		}
		switch p.Type {
		case models.PlanMonthly, models.PlanQuarterly, models.PlanYearly:
		default:
			return fmt.Errorf("plan %s: unknown type %q", p.ID, p.Type)
		}
	}
	for i, course := range c.Courses {
		if course.ID == "" || course.Title == "" {
			return fmt.Errorf("course #%d: id and title are required", i+1)
		}
		for j, l := range course.Lessons {
			if l.ID == "" || l.Title == "" {
				return fmt.Errorf("course %s lesson #%d: id and title are required", course.ID, j+1)
			}
		}
	}
	if len(c.Plans) == 0 && len(c.Courses) == 0 {
		return errors.New("catalog has no plans or courses")
	}
	return nil
}

// PlanModels returns the plans with defaults applied.
func (c *Catalog) PlanModels() []*models.Plan {
	plans := make([]*models.Plan, 0, len(c.Plans))
	for i := range c.Plans {
		p := c.Plans[i]
		if p.Currency == "" {
			p.Currency = "usd"
		}
		plans = append(plans, &p)
	}
	return plans
}

// Model converts the entry into a course document stamped with now.
func (cc CatalogCourse) Model(now time.Time) *models.Course {
	s := cc.Slug
	if s == "" {
		if cc.TitleEn != "" {
			s = slug.Make(cc.TitleEn)
		} else {
			s = slug.Make(cc.Title)
		}
	}
	return &models.Course{
		ID:          cc.ID,
		Slug:        s,
		Title:       cc.Title,
		TitleEn:     cc.TitleEn,
		Description: cc.Description,
		Level:       cc.Level,
		ImageURL:    cc.ImageURL,
		IsPremium:   cc.IsPremium,
		IsPublished: cc.IsPublished,
		Order:       cc.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// LessonModels converts the inline lessons, ordered as listed.
func (cc CatalogCourse) LessonModels(now time.Time) []*models.Lesson {
	lessons := make([]*models.Lesson, 0, len(cc.Lessons))
	for i, l := range cc.Lessons {
		lessons = append(lessons, &models.Lesson{
			ID:              l.ID,
			CourseID:        cc.ID,
			Title:           l.Title,
			TitleEn:         l.TitleEn,
			VideoURL:        l.VideoURL,
			DurationMinutes: l.DurationMinutes,
			Order:           i + 1,
			IsFree:          l.IsFree,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return lessons
}
