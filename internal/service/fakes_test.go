package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/karchauskas1/paseka-it-crm-sub001/internal/cache"
	dom "github.com/karchauskas1/paseka-it-crm-sub001/internal/domain"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/llm"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/painradar"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/repo"
	"github.com/karchauskas1/paseka-it-crm-sub001/internal/telegram"
)

// The fakes embed the repository interfaces so a test only implements the
// methods the service under test calls.

var errUnique = &pgconn.PgError{Code: "23505"}

func ptr[T any](v T) *T { return &v }

// malformedID mimics Postgres rejecting a non-UUID id.
func malformedID(id string) error {
	if strings.HasPrefix(id, "not-a-uuid") {
		return &pgconn.PgError{Code: "22P02", Message: `invalid input syntax for type uuid: "` + id + `"`}
	}
	return nil
}

type fakeUsers struct {
	repo.UserRepo
	byID map[string]dom.User
}

func newFakeUsers(users ...dom.User) *fakeUsers {
	f := &fakeUsers{byID: map[string]dom.User{}}
	for _, u := range users {
		f.byID[u.ID] = u
	}
	return f
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (dom.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return u, nil
		}
	}
	return dom.User{}, pgx.ErrNoRows
}

func (f *fakeUsers) GetByID(_ context.Context, id string) (dom.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return dom.User{}, pgx.ErrNoRows
	}
	return u, nil
}

func (f *fakeUsers) Create(ctx context.Context, email, name, hash string) (dom.User, error) {
	if _, err := f.GetByEmail(ctx, email); err == nil {
		return dom.User{}, errUnique
	}
	u := dom.User{ID: fmt.Sprintf("u%d", len(f.byID)+1), Email: email, Name: name, PasswordHash: hash}
	f.byID[u.ID] = u
	return u, nil
}

func (f *fakeUsers) SetTelegramChatID(_ context.Context, id string, chatID *string) error {
	u, ok := f.byID[id]
	if !ok {
		return pgx.ErrNoRows
	}
	u.TelegramChatID = chatID
	f.byID[id] = u
	return nil
}

type fakeWorkspaces struct {
	repo.WorkspaceRepo
	workspaces map[string]dom.Workspace
	members    map[string]dom.Member // key: workspace|user
	created    []dom.Workspace
}

func newFakeWorkspaces(workspaces ...dom.Workspace) *fakeWorkspaces {
	f := &fakeWorkspaces{workspaces: map[string]dom.Workspace{}, members: map[string]dom.Member{}}
	for _, ws := range workspaces {
		f.workspaces[ws.ID] = ws
	}
	return f
}

func (f *fakeWorkspaces) addMember(ws, user string, role dom.Role) {
	f.members[ws+"|"+user] = dom.Member{WorkspaceID: ws, UserID: user, Role: role, UserName: "name-" + user}
}

func (f *fakeWorkspaces) CreateWithOwner(_ context.Context, name, ownerID string) (dom.Workspace, error) {
	ws := dom.Workspace{ID: fmt.Sprintf("ws%d", len(f.workspaces)+1), Name: name, OwnerID: ownerID,
		NotificationSettings: dom.DefaultNotificationSettings()}
	f.workspaces[ws.ID] = ws
	f.created = append(f.created, ws)
	f.addMember(ws.ID, ownerID, dom.RoleOwner)
	return ws, nil
}

func (f *fakeWorkspaces) GetByID(_ context.Context, id string) (dom.Workspace, error) {
	ws, ok := f.workspaces[id]
	if !ok {
		return dom.Workspace{}, pgx.ErrNoRows
	}
	return ws, nil
}

func (f *fakeWorkspaces) GetMember(_ context.Context, workspaceID, userID string) (dom.Member, error) {
	m, ok := f.members[workspaceID+"|"+userID]
	if !ok {
		return dom.Member{}, pgx.ErrNoRows
	}
	return m, nil
}

func (f *fakeWorkspaces) UpdateMemberRole(_ context.Context, workspaceID, userID string, role dom.Role) error {
	m, ok := f.members[workspaceID+"|"+userID]
	if !ok {
		return pgx.ErrNoRows
	}
	m.Role = role
	f.members[workspaceID+"|"+userID] = m
	return nil
}

func (f *fakeWorkspaces) RemoveMember(_ context.Context, workspaceID, userID string) error {
	delete(f.members, workspaceID+"|"+userID)
	return nil
}

func (f *fakeWorkspaces) ListWithTelegram(context.Context) ([]dom.Workspace, error) {
	var out []dom.Workspace
	for _, ws := range f.workspaces {
		if ws.HasTelegram() {
			out = append(out, ws)
		}
	}
	return out, nil
}

func (f *fakeWorkspaces) List(context.Context) ([]dom.Workspace, error) {
	out := make([]dom.Workspace, 0, len(f.workspaces))
	for _, ws := range f.workspaces {
		out = append(out, ws)
	}
	return out, nil
}

type fakeInvites struct {
	repo.InviteRepo
	invites map[string]dom.Invite
	members *fakeWorkspaces
}

func (f *fakeInvites) Create(_ context.Context, inv dom.Invite) (dom.Invite, error) {
	f.invites[inv.ID] = inv
	return inv, nil
}

func (f *fakeInvites) GetByID(_ context.Context, id string) (dom.Invite, error) {
	inv, ok := f.invites[id]
	if !ok {
		return dom.Invite{}, pgx.ErrNoRows
	}
	return inv, nil
}

func (f *fakeInvites) Accept(_ context.Context, inviteID, userID string, at time.Time) error {
	inv, ok := f.invites[inviteID]
	if !ok || inv.AcceptedAt != nil {
		return pgx.ErrNoRows
	}
	inv.AcceptedAt = &at
	f.invites[inviteID] = inv
	f.members.addMember(inv.WorkspaceID, userID, inv.Role)
	return nil
}

type fakeTasks struct {
	repo.TaskRepo
	tasks   map[string]dom.Task
	bulk    []string
	openDue func(from *time.Time, to time.Time) []dom.Task
}

func newFakeTasks(tasks ...dom.Task) *fakeTasks {
	f := &fakeTasks{tasks: map[string]dom.Task{}}
	for _, t := range tasks {
		f.tasks[t.ID] = t
	}
	return f
}

func (f *fakeTasks) Create(_ context.Context, t dom.Task) (dom.Task, error) {
	t.ID = fmt.Sprintf("t%d", len(f.tasks)+1)
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeTasks) GetByID(_ context.Context, workspaceID, id string) (dom.Task, error) {
	if err := malformedID(id); err != nil {
		return dom.Task{}, err
	}
	t, ok := f.tasks[id]
	if !ok || t.WorkspaceID != workspaceID {
		return dom.Task{}, pgx.ErrNoRows
	}
	return t, nil
}

func (f *fakeTasks) Update(_ context.Context, t dom.Task) (dom.Task, error) {
	f.tasks[t.ID] = t
	return t, nil
}

func (f *fakeTasks) BulkUpdate(_ context.Context, _ string, ids []string, _ dom.TaskPatch, _ time.Time) (int, error) {
	f.bulk = ids
	return len(ids), nil
}

func (f *fakeTasks) BulkDelete(_ context.Context, workspaceID string, ids []string) ([]dom.Task, error) {
	var out []dom.Task
	for _, id := range ids {
		if t, ok := f.tasks[id]; ok && t.WorkspaceID == workspaceID {
			out = append(out, t)
			delete(f.tasks, id)
		}
	}
	return out, nil
}

func (f *fakeTasks) OpenDue(_ context.Context, _ string, from *time.Time, to time.Time) ([]dom.Task, error) {
	if f.openDue == nil {
		return nil, nil
	}
	return f.openDue(from, to), nil
}

type fakeProjects struct {
	repo.ProjectRepo
	projects map[string]dom.Project
}

func (f *fakeProjects) Create(_ context.Context, p dom.Project) (dom.Project, error) {
	if f.projects == nil {
		f.projects = map[string]dom.Project{}
	}
	p.ID = fmt.Sprintf("p%d", len(f.projects)+1)
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeProjects) Update(_ context.Context, p dom.Project) (dom.Project, error) {
	f.projects[p.ID] = p
	return p, nil
}

func (f *fakeProjects) Delete(_ context.Context, workspaceID, id string) error {
	if p, ok := f.projects[id]; !ok || p.WorkspaceID != workspaceID {
		return pgx.ErrNoRows
	}
	delete(f.projects, id)
	return nil
}

func (f *fakeProjects) GetByID(_ context.Context, workspaceID, id string) (dom.Project, error) {
	if err := malformedID(id); err != nil {
		return dom.Project{}, err
	}
	p, ok := f.projects[id]
	if !ok || p.WorkspaceID != workspaceID {
		return dom.Project{}, pgx.ErrNoRows
	}
	return p, nil
}

func (f *fakeProjects) List(_ context.Context, workspaceID string, _ dom.ProjectFilter) ([]dom.Project, error) {
	var out []dom.Project
	for _, p := range f.projects {
		if p.WorkspaceID == workspaceID {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeEvents struct {
	repo.EventRepo
	between []dom.Event
	events  map[string]dom.Event
}

func (f *fakeEvents) Create(_ context.Context, e dom.Event) (dom.Event, error) {
	if f.events == nil {
		f.events = map[string]dom.Event{}
	}
	e.ID = fmt.Sprintf("e%d", len(f.events)+1)
	f.events[e.ID] = e
	return e, nil
}

func (f *fakeEvents) GetByID(_ context.Context, workspaceID, id string) (dom.Event, error) {
	e, ok := f.events[id]
	if !ok || e.WorkspaceID != workspaceID {
		return dom.Event{}, pgx.ErrNoRows
	}
	return e, nil
}

func (f *fakeEvents) Update(_ context.Context, e dom.Event) (dom.Event, error) {
	f.events[e.ID] = e
	return e, nil
}

func (f *fakeEvents) Between(context.Context, string, time.Time, time.Time) ([]dom.Event, error) {
	return f.between, nil
}

type fakeTouches struct {
	repo.TouchRepo
	touches   map[string]dom.Touch
	converted []dom.Client
	followUps []dom.Touch
}

func (f *fakeTouches) GetByID(_ context.Context, workspaceID, id string) (dom.Touch, error) {
	t, ok := f.touches[id]
	if !ok || t.WorkspaceID != workspaceID {
		return dom.Touch{}, pgx.ErrNoRows
	}
	return t, nil
}

func (f *fakeTouches) ConvertToClient(_ context.Context, workspaceID, touchID string, c dom.Client, at time.Time) (dom.Touch, dom.Client, error) {
	t, ok := f.touches[touchID]
	if !ok || t.Status == dom.TouchConverted {
		return dom.Touch{}, dom.Client{}, pgx.ErrNoRows
	}
	c.ID = fmt.Sprintf("c%d", len(f.converted)+1)
	f.converted = append(f.converted, c)
	t.Status = dom.TouchConverted
	t.ConvertedToClientID = &c.ID
	t.ConvertedAt = &at
	f.touches[touchID] = t
	return t, c, nil
}

func (f *fakeTouches) FollowUps(_ context.Context, _ string, _ *time.Time, _ time.Time, exclude []dom.TouchStatus) ([]dom.Touch, error) {
	var out []dom.Touch
outer:
	for _, t := range f.followUps {
		for _, st := range exclude {
			if t.Status == st {
				continue outer
			}
		}
		out = append(out, t)
	}
	return out, nil
}

type fakeNotifications struct {
	repo.NotificationRepo
	created []dom.Notification
}

func (f *fakeNotifications) Create(_ context.Context, n dom.Notification) (dom.Notification, error) {
	n.ID = fmt.Sprintf("n%d", len(f.created)+1)
	f.created = append(f.created, n)
	return n, nil
}

func (f *fakeNotifications) List(_ context.Context, workspaceID, userID string, unreadOnly bool, limit int) ([]dom.Notification, error) {
	var out []dom.Notification
	for _, n := range f.created {
		if n.WorkspaceID == workspaceID && n.UserID == userID && (!unreadOnly || !n.IsRead) && len(out) < limit {
			out = append(out, n)
		}
	}
	return out, nil
}

func (f *fakeNotifications) CountUnread(ctx context.Context, workspaceID, userID string) (int, error) {
	unread, _ := f.List(ctx, workspaceID, userID, true, len(f.created))
	return len(unread), nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, workspaceID, userID, id string) error {
	for i, n := range f.created {
		if n.ID == id && n.WorkspaceID == workspaceID && n.UserID == userID {
			f.created[i].IsRead = true
			return nil
		}
	}
	return pgx.ErrNoRows
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, workspaceID, userID string) (int, error) {
	marked := 0
	for i, n := range f.created {
		if n.WorkspaceID == workspaceID && n.UserID == userID && !n.IsRead {
			f.created[i].IsRead = true
			marked++
		}
	}
	return marked, nil
}

type fakeClients struct {
	repo.ClientRepo
	clients   map[string]dom.Client
	filter    dom.ClientFilter
	analytics dom.ClientAnalytics
}

func (f *fakeClients) Create(_ context.Context, c dom.Client) (dom.Client, error) {
	if f.clients == nil {
		f.clients = map[string]dom.Client{}
	}
	c.ID = fmt.Sprintf("c%d", len(f.clients)+1)
	f.clients[c.ID] = c
	return c, nil
}

func (f *fakeClients) GetByID(_ context.Context, workspaceID, id string) (dom.Client, error) {
	if err := malformedID(id); err != nil {
		return dom.Client{}, err
	}
	c, ok := f.clients[id]
	if !ok || c.WorkspaceID != workspaceID {
		return dom.Client{}, pgx.ErrNoRows
	}
	return c, nil
}

func (f *fakeClients) List(_ context.Context, workspaceID string, filter dom.ClientFilter) ([]dom.Client, error) {
	f.filter = filter
	var out []dom.Client
	for _, c := range f.clients {
		if c.WorkspaceID != workspaceID || (filter.Status != "" && c.Status != filter.Status) {
			continue
		}
		if filter.Query != "" && !strings.Contains(strings.ToLower(c.Name+" "+c.Company), strings.ToLower(filter.Query)) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (f *fakeClients) Update(_ context.Context, c dom.Client) (dom.Client, error) {
	f.clients[c.ID] = c
	return c, nil
}

func (f *fakeClients) Analytics(_ context.Context, _, id string) (dom.ClientAnalytics, error) {
	a := f.analytics
	a.ClientID = id
	return a, nil
}

type fakeFiles struct {
	repo.FileRepo
	files map[string]dom.ProjectFile
}

func (f *fakeFiles) Create(_ context.Context, file dom.ProjectFile) (dom.ProjectFile, error) {
	if f.files == nil {
		f.files = map[string]dom.ProjectFile{}
	}
	file.ID = fmt.Sprintf("f%d", len(f.files)+1)
	f.files[file.ID] = file
	return file, nil
}

func (f *fakeFiles) List(_ context.Context, workspaceID, projectID string) ([]dom.ProjectFile, error) {
	var out []dom.ProjectFile
	for _, file := range f.files {
		if file.WorkspaceID == workspaceID && file.ProjectID == projectID {
			out = append(out, file)
		}
	}
	return out, nil
}

func (f *fakeFiles) GetByID(_ context.Context, workspaceID, id string) (dom.ProjectFile, error) {
	file, ok := f.files[id]
	if !ok || file.WorkspaceID != workspaceID {
		return dom.ProjectFile{}, pgx.ErrNoRows
	}
	return file, nil
}

type fakeStore struct {
	puts    []string
	deleted []string
}

func (s *fakeStore) Put(_ context.Context, key string, _ io.ReadSeeker, _ int64, _ string) error {
	s.puts = append(s.puts, key)
	return nil
}

func (s *fakeStore) PresignGet(_ context.Context, key, _ string, _ time.Duration) (string, error) {
	return "https://s3.example.com/" + key, nil
}

func (s *fakeStore) Delete(_ context.Context, key string) error {
	s.deleted = append(s.deleted, key)
	return nil
}

type fakeFeedback struct {
	repo.FeedbackRepo
	items map[string]dom.Feedback
}

func (f *fakeFeedback) GetByID(_ context.Context, workspaceID, id string) (dom.Feedback, error) {
	fb, ok := f.items[id]
	if !ok || fb.WorkspaceID != workspaceID {
		return dom.Feedback{}, pgx.ErrNoRows
	}
	return fb, nil
}

func (f *fakeFeedback) Delete(_ context.Context, _, id string) error {
	delete(f.items, id)
	return nil
}

// memCache is an in-memory ResultCache keyed like the Redis one.
type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	hits    int
}

func newMemCache() *memCache { return &memCache{entries: map[string][]byte{}} }

func (m *memCache) Get(_ context.Context, workspaceID, kind, sub string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.entries[cache.Key(workspaceID, kind, sub)]
	if !ok {
		return false, nil
	}
	m.hits++
	return true, json.Unmarshal(b, dst)
}

func (m *memCache) Set(_ context.Context, workspaceID, kind, sub string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[cache.Key(workspaceID, kind, sub)] = b
	return nil
}

func (m *memCache) Invalidate(_ context.Context, workspaceID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := cache.Key(workspaceID, "", "")
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
		}
	}
	return nil
}

type recordedActivities struct {
	mu   sync.Mutex
	list []dom.Activity
}

func (r *recordedActivities) Log(_ context.Context, a dom.Activity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.list = append(r.list, a)
}

func (r *recordedActivities) types() []dom.ActivityType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]dom.ActivityType, len(r.list))
	for i, a := range r.list {
		out[i] = a.Type
	}
	return out
}

type groupMessage struct {
	ws   string
	ev   dom.GroupEvent
	data telegram.GroupEventData
}

type personalMessage struct {
	chat string
	text string
}

// fakeNotifier implements both Notifier and DigestSender.
type fakeNotifier struct {
	mu        sync.Mutex
	groups    []groupMessage
	personal  []personalMessage
	workspace map[string]string // ws id -> text
	failFor   string
}

func (f *fakeNotifier) Group(_ context.Context, ws dom.Workspace, ev dom.GroupEvent, data telegram.GroupEventData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.groups = append(f.groups, groupMessage{ws: ws.ID, ev: ev, data: data})
}

func (f *fakeNotifier) Personal(_ context.Context, chatID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.personal = append(f.personal, personalMessage{chat: chatID, text: text})
	return nil
}

func (f *fakeNotifier) Workspace(_ context.Context, ws dom.Workspace, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ws.ID == f.failFor {
		return fmt.Errorf("telegram: chat not found")
	}
	if f.workspace == nil {
		f.workspace = map[string]string{}
	}
	f.workspace[ws.ID] = text
	return nil
}

func (f *fakeNotifier) AppURL() string { return "https://crm.example.com" }

type fakePains struct {
	repo.PainRepo
	mu       sync.Mutex
	keywords map[string]dom.PainKeyword
	scans    map[string]dom.PainScan
	posts    map[string]dom.SocialPost // key: platform|platform id
	byID     map[string]dom.SocialPost
	pains    []dom.ExtractedPain
	analyzed []string
	projects []dom.Project
}

func newFakePains(keywords ...dom.PainKeyword) *fakePains {
	f := &fakePains{
		keywords: map[string]dom.PainKeyword{},
		scans:    map[string]dom.PainScan{},
		posts:    map[string]dom.SocialPost{},
		byID:     map[string]dom.SocialPost{},
	}
	for _, k := range keywords {
		f.keywords[k.ID] = k
	}
	return f
}

func (f *fakePains) GetPain(_ context.Context, workspaceID, id string) (dom.ExtractedPain, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pains {
		if p.ID == id && p.WorkspaceID == workspaceID {
			return p, nil
		}
	}
	return dom.ExtractedPain{}, pgx.ErrNoRows
}

func (f *fakePains) ProjectsWithPain(_ context.Context, workspaceID string) ([]dom.Project, error) {
	var out []dom.Project
	for _, p := range f.projects {
		if p.WorkspaceID == workspaceID && strings.TrimSpace(p.PainDescription) != "" {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePains) CreateKeyword(_ context.Context, k dom.PainKeyword) (dom.PainKeyword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.keywords {
		if existing.WorkspaceID == k.WorkspaceID && existing.Keyword == k.Keyword {
			return dom.PainKeyword{}, errUnique
		}
	}
	k.ID = fmt.Sprintf("k%d", len(f.keywords)+1)
	f.keywords[k.ID] = k
	return k, nil
}

func (f *fakePains) GetKeyword(_ context.Context, workspaceID, id string) (dom.PainKeyword, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	k, ok := f.keywords[id]
	if !ok || k.WorkspaceID != workspaceID {
		return dom.PainKeyword{}, pgx.ErrNoRows
	}
	return k, nil
}

func (f *fakePains) CreateScan(_ context.Context, s dom.PainScan) (dom.PainScan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans[s.ID] = s
	return s, nil
}

func (f *fakePains) FinishScan(_ context.Context, s dom.PainScan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scans[s.ID] = s
	return nil
}

func (f *fakePains) GetScan(_ context.Context, workspaceID, id string) (dom.PainScan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.scans[id]
	if !ok || s.WorkspaceID != workspaceID {
		return dom.PainScan{}, pgx.ErrNoRows
	}
	return s, nil
}

func (f *fakePains) UpsertPost(_ context.Context, p dom.SocialPost) (dom.PostUpsert, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := string(p.Platform) + "|" + p.PlatformID
	if _, ok := f.posts[key]; ok {
		f.posts[key] = p
		return dom.PostUpdated, nil
	}
	p.ID = fmt.Sprintf("p%d", len(f.posts)+1)
	f.posts[key] = p
	f.byID[p.ID] = p
	return dom.PostInserted, nil
}

func (f *fakePains) PostsByIDs(_ context.Context, _ string, ids []string) ([]dom.SocialPost, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []dom.SocialPost
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (f *fakePains) CreatePains(_ context.Context, pains []dom.ExtractedPain) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.pains = append(f.pains, pains...)
	return nil
}

func (f *fakePains) MarkAnalyzed(_ context.Context, ids []string, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.analyzed = append(f.analyzed, ids...)
	return nil
}

type fakeSource struct {
	platform dom.Platform
	posts    []painradar.Post
	err      error
	mu       sync.Mutex
	queries  []string
}

func (s *fakeSource) Platform() dom.Platform { return s.platform }

func (s *fakeSource) Search(_ context.Context, keyword string, limit int) ([]painradar.Post, error) {
	s.mu.Lock()
	s.queries = append(s.queries, keyword)
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if len(s.posts) > limit {
		return s.posts[:limit], nil
	}
	return s.posts, nil
}

// fakeModel extracts one pain per post and fails the batches listed in failBatch.
type fakeModel struct {
	configured bool
	failBatch  map[int]bool
	mu         sync.Mutex
	batches    [][]llm.PostInput
	briefs     []llm.MessageBrief
	matched    []llm.ProjectPain
	matches    []llm.ProjectMatch
}

func (m *fakeModel) Configured() bool { return m.configured }

func (m *fakeModel) TranslateToEnglish(_ context.Context, text string) string { return "en:" + text }

func (m *fakeModel) GenerateKeywords(_ context.Context, niche string) ([]string, error) {
	return []string{niche}, nil
}

func (m *fakeModel) AnalyzeNiche(context.Context, string, []llm.NichePost) llm.NicheAnalysis {
	return llm.FailedNicheAnalysis()
}

func (m *fakeModel) ExtractPains(_ context.Context, posts []llm.PostInput, _ string) ([]llm.PostPains, error) {
	m.mu.Lock()
	n := len(m.batches)
	m.batches = append(m.batches, posts)
	m.mu.Unlock()
	if m.failBatch[n] {
		return nil, fmt.Errorf("model unavailable")
	}
	out := make([]llm.PostPains, len(posts))
	for i, p := range posts {
		out[i] = llm.PostPains{PostID: p.ID, Pains: []llm.Pain{{
			PainText: "pain in " + p.ID,
			Category: dom.PainTechnical,
			Severity: dom.SeverityHigh,
		}}}
	}
	return out, nil
}

func (m *fakeModel) GenerateMessages(_ context.Context, brief llm.MessageBrief) ([]string, error) {
	m.briefs = append(m.briefs, brief)
	return []string{"Hi from " + brief.Niche, "Second take"}, nil
}

func (m *fakeModel) MatchProjects(_ context.Context, _ string, projects []llm.ProjectPain) ([]llm.ProjectMatch, error) {
	m.matched = projects
	return m.matches, nil
}

type fakeMilestones struct {
	repo.MilestoneRepo
	items map[string]dom.Milestone
	seq   int
}

func (f *fakeMilestones) Create(_ context.Context, m dom.Milestone) (dom.Milestone, error) {
	if f.items == nil {
		f.items = map[string]dom.Milestone{}
	}
	if m.Order == 0 {
		for _, existing := range f.items {
			if existing.ProjectID == m.ProjectID {
				m.Order = max(m.Order, existing.Order)
			}
		}
		m.Order++
	}
	f.seq++
	m.ID = fmt.Sprintf("m%d", f.seq)
	f.items[m.ID] = m
	return m, nil
}

func (f *fakeMilestones) GetByID(_ context.Context, workspaceID, id string) (dom.Milestone, error) {
	if err := malformedID(id); err != nil {
		return dom.Milestone{}, err
	}
	m, ok := f.items[id]
	if !ok || m.WorkspaceID != workspaceID {
		return dom.Milestone{}, pgx.ErrNoRows
	}
	return m, nil
}

func (f *fakeMilestones) ListByProject(_ context.Context, workspaceID, projectID string) ([]dom.Milestone, error) {
	var out []dom.Milestone
	for _, m := range f.items {
		if m.WorkspaceID == workspaceID && m.ProjectID == projectID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}

func (f *fakeMilestones) Update(_ context.Context, m dom.Milestone) (dom.Milestone, error) {
	f.items[m.ID] = m
	return m, nil
}

func (f *fakeMilestones) Delete(_ context.Context, _ string, id string) error {
	delete(f.items, id)
	return nil
}
