package controller

import (
	"regexp"
	"strconv"
	"strings"

	"techcrew/internal/models"
)

type FieldKind int

const (
	KindText FieldKind = iota
	KindTextarea
	KindDate
	KindTime
	KindNumber
	KindChoice
)

type Choice struct {
	Value string
	Label string
}

type Field struct {
	Name        string
	Label       string
	Kind        FieldKind
	Required    bool
	Placeholder string
	Pattern     *regexp.Regexp
	Min         *int
	Choices     []Choice
}

var (
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	timePattern = regexp.MustCompile(`^\d{2}:\d{2}$`)
)

// Form describes the create/edit form of one entity. Values pre-fills an
// edit; Build checks the submitted strings and packages the typed input.
type Form[T any, I any] struct {
	Fields []Field
	values func(T) map[string]string
	build  func(map[string]string) I
	check  func(map[string]string) error
}

func (f *Form[T, I]) Values(row T) map[string]string {
	return f.values(row)
}

// Empty returns blank values for a create form.
func (f *Form[T, I]) Empty() map[string]string {
	out := make(map[string]string, len(f.Fields))
	for _, fd := range f.Fields {
		out[fd.Name] = ""
	}
	return out
}

// SetChoices replaces the options of a choice field.
func (f *Form[T, I]) SetChoices(name string, choices []Choice) {
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			f.Fields[i].Choices = choices
		}
	}
}

func (f *Form[T, I]) Build(values map[string]string) (I, error) {
	var zero I
	for _, fd := range f.Fields {
		if err := fd.check(strings.TrimSpace(values[fd.Name])); err != nil {
			return zero, err
		}
	}
	if f.check != nil {
		if err := f.check(values); err != nil {
			return zero, err
		}
	}
	return f.build(values), nil
}

func (fd Field) check(v string) error {
	if v == "" {
		if fd.Required {
			return &models.FieldError{Field: fd.Name, Reason: "is required"}
		}
		return nil
	}
	switch fd.Kind {
	case KindDate:
		if _, err := models.ParseDate(v); err != nil {
			return &models.FieldError{Field: fd.Name, Reason: "must be a date like YYYY-MM-DD"}
		}
	case KindTime:
		if !models.ValidShowTime(v) {
			return &models.FieldError{Field: fd.Name, Reason: "must be a time like HH:MM"}
		}
	case KindNumber:
		n, err := strconv.Atoi(v)
		if err != nil {
			return &models.FieldError{Field: fd.Name, Reason: "must be a whole number"}
		}
		if fd.Min != nil && n < *fd.Min {
			return &models.FieldError{Field: fd.Name, Reason: "must be at least " + strconv.Itoa(*fd.Min)}
		}
	case KindChoice:
		if len(fd.Choices) > 0 && !hasChoice(fd.Choices, v) {
			return &models.FieldError{Field: fd.Name, Reason: "is not one of the options"}
		}
	}
	if fd.Pattern != nil && !fd.Pattern.MatchString(v) {
		return &models.FieldError{Field: fd.Name, Reason: "has the wrong format"}
	}
	return nil
}

func hasChoice(choices []Choice, v string) bool {
	for _, c := range choices {
		if c.Value == v {
			return true
		}
	}
	return false
}

// text returns a pointer to the trimmed value.
func text(values map[string]string, name string) *string {
	v := strings.TrimSpace(values[name])
	return &v
}

// optional returns nil for a blank value.
func optional(values map[string]string, name string) *string {
	v := strings.TrimSpace(values[name])
	if v == "" {
		return nil
	}
	return &v
}

func number(values map[string]string, name string) *int {
	n, err := strconv.Atoi(strings.TrimSpace(values[name]))
	if err != nil {
		return nil
	}
	return &n
}

func date(values map[string]string, name string) *models.Date {
	d := models.Date(strings.TrimSpace(values[name]))
	return &d
}

func BandForm() *Form[models.Band, models.BandInput] {
	return &Form[models.Band, models.BandInput]{
		Fields: []Field{
			{Name: "name", Label: "Band Name", Kind: KindText, Required: true, Placeholder: "Enter band name"},
			{Name: "home_location", Label: "Home Location", Kind: KindText, Required: true, Placeholder: "Enter home location"},
			{Name: "members", Label: "Number of Members", Kind: KindNumber, Required: true, Min: models.Ptr(1)},
			{Name: "last_played", Label: "Last Played", Kind: KindDate, Placeholder: "YYYY-MM-DD"},
			{Name: "notes", Label: "Notes", Kind: KindTextarea, Placeholder: "Enter general notes"},
			{Name: "input_lists", Label: "Input Lists", Kind: KindTextarea, Placeholder: "Enter band's instrument input criteria"},
		},
		values: func(b models.Band) map[string]string {
			return map[string]string{
				"name":          b.Name,
				"home_location": b.HomeLocation,
				"members":       strconv.Itoa(b.Members),
				"last_played":   b.LastPlayed.String(),
				"notes":         b.Notes,
				"input_lists":   b.InputLists,
			}
		},
		build: func(v map[string]string) models.BandInput {
			return models.BandInput{
				Name:         text(v, "name"),
				HomeLocation: text(v, "home_location"),
				Members:      number(v, "members"),
				LastPlayed:   date(v, "last_played"),
				Notes:        text(v, "notes"),
				InputLists:   text(v, "input_lists"),
			}
		},
	}
}

func GigLogForm() *Form[models.GigLog, models.GigLogInput] {
	return &Form[models.GigLog, models.GigLogInput]{
		Fields: []Field{
			{Name: "date", Label: "Date (YYYY-MM-DD)", Kind: KindDate, Required: true, Pattern: datePattern, Placeholder: "YYYY-MM-DD"},
			{Name: "band_id", Label: "Band", Kind: KindChoice, Required: true},
			{Name: "venue", Label: "Venue", Kind: KindText, Required: true, Placeholder: "Enter venue name"},
			{Name: "notes", Label: "Notes", Kind: KindTextarea, Placeholder: "Enter gig notes"},
		},
		values: func(g models.GigLog) map[string]string {
			return map[string]string{"date": g.Date.String(), "band_id": g.BandID, "venue": g.Venue, "notes": g.Notes}
		},
		build: func(v map[string]string) models.GigLogInput {
			return models.GigLogInput{
				Date:   date(v, "date"),
				BandID: text(v, "band_id"),
				Venue:  text(v, "venue"),
				Notes:  text(v, "notes"),
			}
		},
	}
}

// ScheduleForm offers a linked band and a free-text band name. A typed
// name overrides the linked band.
func ScheduleForm() *Form[models.Schedule, models.ScheduleInput] {
	return &Form[models.Schedule, models.ScheduleInput]{
		Fields: []Field{
			{Name: "date", Label: "Date", Kind: KindDate, Required: true, Placeholder: "YYYY-MM-DD"},
			{Name: "show_time", Label: "Show Time", Kind: KindTime, Required: true, Pattern: timePattern, Placeholder: "HH:MM"},
			{Name: "band_id", Label: "Band", Kind: KindChoice},
			{Name: "band_name", Label: "Band Name (override)", Kind: KindText, Placeholder: "Enter band name"},
			{Name: "tech_name", Label: "Tech Working", Kind: KindText, Placeholder: "Enter tech name"},
		},
		values: func(s models.Schedule) map[string]string {
			return map[string]string{
				"date":      s.Date.String(),
				"show_time": s.ShowTime,
				"band_id":   s.BandID,
				"band_name": s.BandName,
				"tech_name": s.TechName,
			}
		},
		check: func(v map[string]string) error {
			if strings.TrimSpace(v["band_id"]) == "" && strings.TrimSpace(v["band_name"]) == "" {
				return &models.FieldError{Field: "band", Reason: "pick a band or type a band name"}
			}
			return nil
		},
		build: func(v map[string]string) models.ScheduleInput {
			in := models.ScheduleInput{
				Date:     date(v, "date"),
				ShowTime: text(v, "show_time"),
				TechName: optional(v, "tech_name"),
			}
			if name := optional(v, "band_name"); name != nil {
				in.BandName = name
			} else {
				in.BandID = optional(v, "band_id")
			}
			return in
		},
	}
}

var (
	statusChoices = []Choice{
		{Value: string(models.StatusOpen), Label: "Open"},
		{Value: string(models.StatusInProgress), Label: "In Progress"},
		{Value: string(models.StatusClosed), Label: "Closed"},
	}
	priorityChoices = []Choice{
		{Value: string(models.PriorityLow), Label: "Low"},
		{Value: string(models.PriorityMedium), Label: "Medium"},
		{Value: string(models.PriorityHigh), Label: "High"},
	}
)

func IssueForm() *Form[models.Issue, models.IssueInput] {
	return &Form[models.Issue, models.IssueInput]{
		Fields: []Field{
			{Name: "title", Label: "Issue", Kind: KindText, Required: true, Placeholder: "Enter issue title"},
			{Name: "description", Label: "Description", Kind: KindTextarea, Required: true, Placeholder: "Enter issue description"},
			{Name: "priority", Label: "Priority", Kind: KindChoice, Choices: priorityChoices},
			{Name: "status", Label: "Status", Kind: KindChoice, Choices: statusChoices},
			{Name: "assigned_to", Label: "Assigned To", Kind: KindText, Placeholder: "Enter tech name"},
			{Name: "notes", Label: "Notes", Kind: KindTextarea, Placeholder: "Enter additional notes"},
		},
		values: func(i models.Issue) map[string]string {
			return map[string]string{
				"title":       i.Title,
				"description": i.Description,
				"priority":    string(i.Priority),
				"status":      string(i.Status),
				"assigned_to": i.AssignedTo,
				"notes":       i.Notes,
			}
		},
		build: func(v map[string]string) models.IssueInput {
			in := models.IssueInput{
				Title:       text(v, "title"),
				Description: text(v, "description"),
				AssignedTo:  text(v, "assigned_to"),
				Notes:       text(v, "notes"),
			}
			if p := optional(v, "priority"); p != nil {
				in.Priority = models.Ptr(models.IssuePriority(*p))
			}
			if s := optional(v, "status"); s != nil {
				in.Status = models.Ptr(models.IssueStatus(*s))
			}
			return in
		},
	}
}

func InventoryForm() *Form[models.InventoryItem, models.InventoryItemInput] {
	return &Form[models.InventoryItem, models.InventoryItemInput]{
		Fields: []Field{
			{Name: "category_id", Label: "Category", Kind: KindChoice, Required: true},
			{Name: "model", Label: "Model", Kind: KindText, Required: true, Placeholder: "Enter model name"},
			{Name: "quantity", Label: "Quantity", Kind: KindNumber, Required: true, Min: models.Ptr(0)},
			{Name: "notes", Label: "Notes", Kind: KindTextarea},
		},
		values: func(i models.InventoryItem) map[string]string {
			return map[string]string{
				"category_id": i.CategoryID,
				"model":       i.Model,
				"quantity":    strconv.Itoa(i.Quantity),
				"notes":       i.Notes,
			}
		},
		build: func(v map[string]string) models.InventoryItemInput {
			return models.InventoryItemInput{
				CategoryID: text(v, "category_id"),
				Model:      text(v, "model"),
				Quantity:   number(v, "quantity"),
				Notes:      text(v, "notes"),
			}
		},
	}
}
