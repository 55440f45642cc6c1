package dashboard

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/rs/zerolog"

	"github.com/studycrew/web/internal/app/models"
	"github.com/studycrew/web/internal/pkg/apperrors"
)

// Query parameters used for dashboard deep links
const (
	ParamYear     = "year"
	ParamSemester = "semester"
)

// Link returns path with a ?year=&semester= deep link
func Link(path string, year models.AcademicYear, semester models.Semester) string {
	return path + "?" + ParamYear + "=" + strconv.Itoa(int(year)) + "&" + ParamSemester + "=" + url.PathEscape(semester.Label())
}

// CourseFetcher retrieves the catalogue for one year and semester
type CourseFetcher interface {
	Courses(ctx context.Context, year models.AcademicYear, semester models.Semester) ([]models.Course, error)
}

// Loader holds the course list for the (year, semester) currently selected
// on a dashboard. Every Select performs exactly one fetch; a fetch that
// completes after a newer Select started is dropped.
type Loader struct {
	fetcher CourseFetcher
	policy  Policy
	own     int
	years   []models.AcademicYear
	logger  zerolog.Logger

	mu         sync.Mutex
	generation uint64
	year       models.AcademicYear
	semester   models.Semester
	loading    bool
	err        string
	courses    []models.Course
	selection  *Selection
}

// NewLoader creates a loader for a visitor in academicYear browsing under policy
func NewLoader(fetcher CourseFetcher, policy Policy, academicYear int, logger zerolog.Logger) *Loader {
	return &Loader{
		fetcher:   fetcher,
		policy:    policy,
		own:       academicYear,
		years:     EligibleYears(policy, academicYear),
		logger:    logger.With().Str("component", "dashboard").Str("policy", policy.String()).Logger(),
		selection: NewSelection(),
	}
}

// Years returns the eligible years
func (l *Loader) Years() []models.AcademicYear {
	out := make([]models.AcademicYear, len(l.years))
	copy(out, l.years)
	return out
}

func (l *Loader) eligible(y models.AcademicYear) bool {
	for _, e := range l.years {
		if e == y {
			return true
		}
	}
	return false
}

func (l *Loader) defaultYear() models.AcademicYear {
	if l.policy == UpToOwnYear {
		return l.years[len(l.years)-1]
	}
	return l.years[0]
}

// Initial picks the first selection of a page from its ?year=&semester=
// query, falling back to the default year and Semester 1, and loads it.
func (l *Loader) Initial(ctx context.Context, q url.Values) error {
	if len(l.years) == 0 {
		return apperrors.ErrNoEligibleYears
	}

	year := l.defaultYear()
	if n, err := strconv.Atoi(q.Get(ParamYear)); err == nil && l.eligible(models.AcademicYear(n)) {
		year = models.AcademicYear(n)
	}
	semester := models.SemesterOne
	if s, ok := models.ParseSemester(q.Get(ParamSemester)); ok {
		semester = s
	}
	return l.Select(ctx, year, semester)
}

// Select switches to year and semester and fetches their courses
func (l *Loader) Select(ctx context.Context, year models.AcademicYear, semester models.Semester) error {
	if !l.eligible(year) {
		return fmt.Errorf("%w: %d", apperrors.ErrYearNotEligible, year)
	}
	if !semester.Valid() {
		return fmt.Errorf("%w: %d", apperrors.ErrInvalidSemester, semester)
	}

	l.mu.Lock()
	l.generation++
	gen := l.generation
	l.year = year
	l.semester = semester
	l.loading = true
	l.err = ""
	l.mu.Unlock()

	courses, err := l.fetcher.Courses(ctx, year, semester)

	l.mu.Lock()
	defer l.mu.Unlock()

	if gen != l.generation {
		l.logger.Debug().Uint64("generation", gen).Msg("Discarding stale course response")
		return nil
	}
	l.loading = false
	if err != nil {
		l.err = apperrors.UserMessage(err, apperrors.MsgFetchCourses)
		l.courses = nil
		l.selection.Reset()
		l.logger.Warn().Err(err).Int("year", int(year)).Int("semester", int(semester)).Msg("Course fetch failed")
		return err
	}

	l.courses = courses
	l.selection.Reset()
	l.logger.Debug().Int("year", int(year)).Int("semester", int(semester)).Int("count", len(courses)).Msg("Courses loaded")
	return nil
}

// Courses returns the loaded courses that belong to the current selection
func (l *Loader) Courses() []models.Course {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visible()
}

func (l *Loader) visible() []models.Course {
	out := make([]models.Course, 0, len(l.courses))
	for _, c := range l.courses {
		if c.Matches(l.year, l.semester) {
			out = append(out, c)
		}
	}
	return out
}

// Knows reports whether code is one of the visible courses
func (l *Loader) Knows(code string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, c := range l.visible() {
		if c.Code == code {
			return true
		}
	}
	return false
}

// Toggle flips code in the selection. It never fetches.
func (l *Loader) Toggle(code string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selection.Toggle(code)
}

// ToggleAll toggles every code that is a visible course and returns the
// resulting selection. Unknown codes are skipped and repeated codes count once.
func (l *Loader) ToggleAll(codes []string) []string {
	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		if _, ok := seen[code]; ok {
			continue
		}
		seen[code] = struct{}{}
		if l.Knows(code) {
			l.Toggle(code)
		}
	}
	return l.Selected()
}

func (l *Loader) IsSelected(code string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selection.Has(code)
}

// Selected returns the selected codes sorted
func (l *Loader) Selected() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.selection.Codes()
}

// Loading reports whether a fetch is outstanding
func (l *Loader) Loading() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loading
}

// Err is the message of the last failed fetch
func (l *Loader) Err() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

// YearOption is one entry of the year picker
type YearOption struct {
	Year   models.AcademicYear
	Label  string
	Active bool
}

// SemesterOption is one entry of the semester picker
type SemesterOption struct {
	Semester models.Semester
	Label    string
	Active   bool
}

// CourseItem is a visible course and whether it is selected
type CourseItem struct {
	models.Course
	Selected bool
}

// View is a snapshot of the loader for templates. Pages render after the
// fetch returns, so Loading is only true for snapshots taken concurrently
// with a Select.
type View struct {
	AcademicYear int
	Years        []YearOption
	Semesters    []SemesterOption
	Year         models.AcademicYear
	YearLabel    string
	Semester     models.Semester
	Loading      bool
	Error        string
	Courses      []CourseItem
	Selected     []string
	NoYears      bool
	NoCourses    bool
}

// View captures the current state
func (l *Loader) View() View {
	l.mu.Lock()
	defer l.mu.Unlock()

	v := View{
		AcademicYear: l.own,
		Year:         l.year,
		YearLabel:    l.year.Label(),
		Semester:     l.semester,
		Loading:      l.loading,
		Error:        l.err,
		Selected:     l.selection.Codes(),
		NoYears:      len(l.years) == 0,
	}
	for _, y := range l.years {
		v.Years = append(v.Years, YearOption{Year: y, Label: y.Label(), Active: y == l.year})
	}
	for _, s := range models.Semesters {
		v.Semesters = append(v.Semesters, SemesterOption{Semester: s, Label: s.Label(), Active: s == l.semester})
	}
	for _, c := range l.visible() {
		v.Courses = append(v.Courses, CourseItem{Course: c, Selected: l.selection.Has(c.Code)})
	}
	v.NoCourses = !v.NoYears && !v.Loading && v.Error == "" && len(v.Courses) == 0
	return v
}
