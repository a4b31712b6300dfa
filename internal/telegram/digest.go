package telegram

import (
	"fmt"
	"sort"
	"strings"
	"time"

	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
)

const (
	unassigned       = "Не назначено"
	digestSeparator  = "━━━━━━━━━━━━━━━"
	weeklyUnassigned = "не назначено"
)

// DailyDigest is what one workspace has on its plate today.
type DailyDigest struct {
	Date           time.Time
	Events         []dom.Event
	Tasks          []dom.Task
	OverdueTasks   []dom.Task
	Touches        []dom.Touch
	OverdueTouches []dom.Touch
}

// Empty reports whether there is nothing to send.
func (d DailyDigest) Empty() bool {
	return len(d.Events) == 0 && len(d.Tasks) == 0 && len(d.OverdueTasks) == 0 &&
		len(d.Touches) == 0 && len(d.OverdueTouches) == 0
}

type userDigest struct {
	name                    string
	tasks, overdueTasks     []dom.Task
	touches, overdueTouches []dom.Touch
}

// ownerKey groups by assignee id; "" is the unassigned bucket.
func ownerKey(id *string) string {
	if id == nil {
		return ""
	}
	return *id
}

func ownerName(id *string, name string) string {
	if ownerKey(id) == "" || name == "" {
		return unassigned
	}
	return name
}

// sortOwners orders keys by display name with the unassigned bucket last.
func sortOwners(keys []string, name func(key string) string) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if (a == "") != (b == "") {
			return b == ""
		}
		if na, nb := name(a), name(b); na != nb {
			return na < nb
		}
		return a < b
	})
}

// FormatDailyDigest renders the MarkdownV2 daily digest. Times are shown in loc.
func FormatDailyDigest(d DailyDigest, appURL string, loc *time.Location) string {
	e := EscapeMarkdownV2
	byUser := map[string]*userDigest{}
	get := func(id *string, name string) *userDigest {
		key := ownerKey(id)
		u, ok := byUser[key]
		if !ok {
			u = &userDigest{name: ownerName(id, name)}
			byUser[key] = u
		}
		return u
	}
	for _, t := range d.Tasks {
		u := get(t.AssigneeID, t.AssigneeName)
		u.tasks = append(u.tasks, t)
	}
	for _, t := range d.OverdueTasks {
		u := get(t.AssigneeID, t.AssigneeName)
		u.overdueTasks = append(u.overdueTasks, t)
	}
	for _, t := range d.Touches {
		u := get(t.AssigneeID, t.AssigneeName)
		u.touches = append(u.touches, t)
	}
	for _, t := range d.OverdueTouches {
		u := get(t.AssigneeID, t.AssigneeName)
		u.overdueTouches = append(u.overdueTouches, t)
	}
	keys := make([]string, 0, len(byUser))
	for key := range byUser {
		keys = append(keys, key)
	}
	sortOwners(keys, func(key string) string { return byUser[key].name })

	var b strings.Builder
	fmt.Fprintf(&b, "📅 *%s*\n\n", e(longDate(d.Date.In(loc))))

	if len(d.Events) > 0 {
		b.WriteString("📆 *СОБЫТИЯ НА СЕГОДНЯ:*\n")
		for _, ev := range d.Events {
			fmt.Fprintf(&b, "%s %s %s\n", eventIcon(ev.Type), e(eventTime(ev, loc)), e(ev.Title))
		}
		b.WriteString("\n")
	}

	for _, key := range keys {
		u := byUser[key]
		b.WriteString(digestSeparator + "\n")
		fmt.Fprintf(&b, "👤 *%s*\n\n", e(u.name))

		if len(u.overdueTasks) > 0 {
			b.WriteString("🚨 *Просроченные задачи:*\n")
			for _, t := range u.overdueTasks {
				due := ""
				if t.DueDate != nil {
					due = shortDate(t.DueDate.In(loc))
				}
				fmt.Fprintf(&b, "  %s %s \\(%s\\)\n", priorityIcon(t.Priority), e(t.Title), e(due))
			}
			b.WriteString("\n")
		}
		if len(u.overdueTouches) > 0 {
			b.WriteString("🚨 *Просроченные касания:*\n")
			for _, t := range u.overdueTouches {
				due := ""
				if t.FollowUpAt != nil {
					due = shortDate(t.FollowUpAt.In(loc))
				}
				fmt.Fprintf(&b, "  📱 %s%s — %s\n", e(t.ContactName), company(t), e(due))
			}
			b.WriteString("\n")
		}
		if len(u.tasks) > 0 {
			b.WriteString("📋 *Задачи на сегодня:*\n")
			for _, t := range u.tasks {
				project := ""
				if t.ProjectName != "" {
					project = " \\[" + e(t.ProjectName) + "\\]"
				}
				fmt.Fprintf(&b, "  %s %s%s\n", priorityIcon(t.Priority), e(t.Title), project)
			}
			b.WriteString("\n")
		}
		if len(u.touches) > 0 {
			b.WriteString("🤝 *Касания \\(follow\\-up\\):*\n")
			for _, t := range u.touches {
				fmt.Fprintf(&b, "  📱 %s%s\n", e(t.ContactName), company(t))
			}
			b.WriteString("\n")
		}
	}

	fmt.Fprintf(&b, "[Открыть CRM](%s)", appURL)
	return b.String()
}

func company(t dom.Touch) string {
	if t.ContactCompany == "" {
		return ""
	}
	return " \\(" + EscapeMarkdownV2(t.ContactCompany) + "\\)"
}

func eventTime(ev dom.Event, loc *time.Location) string {
	if ev.AllDay {
		return "🕐"
	}
	return clock(ev.StartDate.In(loc))
}

// WeeklyDigest is the plan for the seven days starting at Start.
type WeeklyDigest struct {
	Start   time.Time
	Tasks   []dom.Task
	Events  []dom.Event
	Touches []dom.Touch
}

func (d WeeklyDigest) Empty() bool {
	return len(d.Tasks) == 0 && len(d.Events) == 0 && len(d.Touches) == 0
}

type dayPlan struct {
	date    time.Time
	tasks   []dom.Task
	events  []dom.Event
	touches []dom.Touch
}

// FormatWeeklyDigest renders the MarkdownV2 weekly plan grouped by day.
func FormatWeeklyDigest(d WeeklyDigest, appURL string, loc *time.Location) string {
	e := EscapeMarkdownV2
	start := d.Start.In(loc)
	end := start.AddDate(0, 0, 6)

	days := map[string]*dayPlan{}
	day := func(t time.Time) *dayPlan {
		t = t.In(loc)
		key := t.Format("2006-01-02")
		p, ok := days[key]
		if !ok {
			p = &dayPlan{date: t}
			days[key] = p
		}
		return p
	}
	type workload struct {
		name           string
		tasks, touches int
	}
	load := map[string]*workload{}
	loadOf := func(id *string, name string) *workload {
		key := ownerKey(id)
		w, ok := load[key]
		if !ok {
			w = &workload{name: ownerName(id, name)}
			load[key] = w
		}
		return w
	}
	for _, t := range d.Tasks {
		loadOf(t.AssigneeID, t.AssigneeName).tasks++
		if t.DueDate != nil {
			p := day(*t.DueDate)
			p.tasks = append(p.tasks, t)
		}
	}
	for _, ev := range d.Events {
		p := day(ev.StartDate)
		p.events = append(p.events, ev)
	}
	for _, t := range d.Touches {
		loadOf(t.AssigneeID, t.AssigneeName).touches++
		if t.FollowUpAt != nil {
			p := day(*t.FollowUpAt)
			p.touches = append(p.touches, t)
		}
	}

	var b strings.Builder
	b.WriteString("📊 *План на неделю*\n")
	fmt.Fprintf(&b, "%s \\- %s\n\n", e(dayMonth(start)), e(dayMonth(end)))

	b.WriteString("📈 *Сводка:*\n")
	fmt.Fprintf(&b, "• Задач: %d\n", len(d.Tasks))
	fmt.Fprintf(&b, "• Событий: %d\n", len(d.Events))
	fmt.Fprintf(&b, "• Касаний: %d\n\n", len(d.Touches))

	if len(load) > 0 {
		keys := make([]string, 0, len(load))
		for key := range load {
			keys = append(keys, key)
		}
		sortOwners(keys, func(key string) string { return load[key].name })
		b.WriteString("👥 *Нагрузка:*\n")
		for _, key := range keys {
			w := load[key]
			fmt.Fprintf(&b, "%s: %d задач, %d касаний\n", e(w.name), w.tasks, w.touches)
		}
		b.WriteString("\n")
	}

	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	b.WriteString("📅 *По дням:*\n\n")
	for _, k := range keys {
		p := days[k]
		fmt.Fprintf(&b, "*%s, %s*\n", e(weekdaysTitle[p.date.Weekday()]), e(shortDate(p.date)))
		for _, t := range p.tasks {
			fmt.Fprintf(&b, "  %s %s \\(%s\\)\n", priorityIcon(t.Priority), e(t.Title), e(weeklyOwner(t.AssigneeName)))
		}
		for _, ev := range p.events {
			fmt.Fprintf(&b, "  %s %s %s\n", eventIcon(ev.Type), e(eventTime(ev, loc)), e(ev.Title))
		}
		for _, t := range p.touches {
			fmt.Fprintf(&b, "  🤝 %s \\(%s\\)\n", e(t.ContactName), e(weeklyOwner(t.AssigneeName)))
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "[Открыть CRM](%s)", appURL)
	return b.String()
}

func weeklyOwner(name string) string {
	if name == "" {
		return weeklyUnassigned
	}
	return name
}
