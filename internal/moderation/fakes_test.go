package moderation

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/PancyStudios/ArcaneBotGo/internal/platform"
	"github.com/PancyStudios/ArcaneBotGo/pkg/models"
	"github.com/bwmarrin/discordgo"
)

const botID = "bot"

type call struct {
	op     string
	userID string
	reason string
	until  *time.Time
}

// fakePlatform records every mutation and keeps a tiny guild in memory
type fakePlatform struct {
	mu sync.Mutex

	members   map[string]*discordgo.Member
	roles     map[string]*discordgo.Role
	outranked map[string]bool
	calls     []call
	sent      []string
	dms       []string

	createRoleCalls int
	dmErr           error
	kickErr         error
	timeoutErr      error
}

func newFakePlatform(users ...string) *fakePlatform {
	p := &fakePlatform{
		members:   map[string]*discordgo.Member{},
		roles:     map[string]*discordgo.Role{},
		outranked: map[string]bool{},
	}
	for _, u := range users {
		p.members[u] = &discordgo.Member{User: &discordgo.User{ID: u}}
	}
	return p
}

func (p *fakePlatform) record(c call) {
	p.calls = append(p.calls, c)
}

func (p *fakePlatform) ops(op string) []call {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []call
	for _, c := range p.calls {
		if c.op == op {
			out = append(out, c)
		}
	}
	return out
}

func (p *fakePlatform) BotUserID() string { return botID }

func (p *fakePlatform) SendMessage(_ context.Context, _, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sent = append(p.sent, content)
	return nil
}

func (p *fakePlatform) SendEmbed(context.Context, string, *discordgo.MessageEmbed) error {
	return nil
}

func (p *fakePlatform) SendDirect(_ context.Context, _, content string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.dmErr != nil {
		return p.dmErr
	}
	p.dms = append(p.dms, content)
	return nil
}

func (p *fakePlatform) Guild(_ context.Context, guildID string) (*discordgo.Guild, error) {
	return &discordgo.Guild{ID: guildID, Name: "Test Guild"}, nil
}

func (p *fakePlatform) Member(_ context.Context, _, userID string) (*discordgo.Member, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.members[userID]
	if !ok {
		return nil, platform.ErrUnknownMember
	}
	cp := *m
	cp.Roles = append([]string(nil), m.Roles...)
	return &cp, nil
}

func (p *fakePlatform) Outranks(_ context.Context, _, _, targetID string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.members[targetID]; !ok {
		return false, platform.ErrUnknownMember
	}
	return !p.outranked[targetID], nil
}

func (p *fakePlatform) FindRole(_ context.Context, _, name string) (*discordgo.Role, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.roles[name], nil
}

func (p *fakePlatform) CreateRole(_ context.Context, _, name, reason string) (*discordgo.Role, error) {
	time.Sleep(10 * time.Millisecond)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.createRoleCalls++
	role := &discordgo.Role{ID: fmt.Sprintf("role-%d", p.createRoleCalls), Name: name}
	p.roles[name] = role
	p.record(call{op: "createRole", reason: reason})
	return role, nil
}

func (p *fakePlatform) DenyInChannels(context.Context, string, string, int64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record(call{op: "deny"})
	return nil
}

func (p *fakePlatform) AddRole(_ context.Context, _, userID, roleID, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.members[userID]
	if !ok {
		return platform.ErrUnknownMember
	}
	if !platform.HasRole(m, roleID) {
		m.Roles = append(m.Roles, roleID)
	}
	p.record(call{op: "addRole", userID: userID, reason: reason})
	return nil
}

func (p *fakePlatform) RemoveRole(_ context.Context, _, userID, roleID, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.members[userID]
	if !ok {
		return platform.ErrUnknownMember
	}
	kept := m.Roles[:0]
	for _, id := range m.Roles {
		if id != roleID {
			kept = append(kept, id)
		}
	}
	m.Roles = kept
	p.record(call{op: "removeRole", userID: userID, reason: reason})
	return nil
}

func (p *fakePlatform) Timeout(_ context.Context, _, userID string, until *time.Time, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.timeoutErr != nil {
		return p.timeoutErr
	}
	if m, ok := p.members[userID]; ok {
		m.CommunicationDisabledUntil = until
	}
	p.record(call{op: "timeout", userID: userID, reason: reason, until: until})
	return nil
}

func (p *fakePlatform) Kick(_ context.Context, _, userID, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.kickErr != nil {
		return p.kickErr
	}
	p.record(call{op: "kick", userID: userID, reason: reason})
	return nil
}

func (p *fakePlatform) Ban(_ context.Context, _, userID, reason string, _ int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record(call{op: "ban", userID: userID, reason: reason})
	return nil
}

func (p *fakePlatform) DeleteRecentMessages(_ context.Context, _, before string, n int) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.record(call{op: "purge", reason: before})
	return n, nil
}

// memStore keeps warns and mute jobs in memory
type memStore struct {
	mu    sync.Mutex
	warns map[string]int64
	jobs  map[string]models.MuteJob
}

func newMemStore() *memStore {
	return &memStore{warns: map[string]int64{}, jobs: map[string]models.MuteJob{}}
}

func key(guildID, userID string) string { return guildID + ":" + userID }

func (s *memStore) GetXP(context.Context, string, string) (models.Option[models.XPRecord], error) {
	return models.None[models.XPRecord](), nil
}
func (s *memStore) AddXP(context.Context, string, string, int64) (int64, error) { return 0, nil }
func (s *memStore) SubtractXP(context.Context, string, string, int64) (int64, error) {
	return 0, nil
}
func (s *memStore) SetXP(context.Context, string, string, int64) error { return nil }
func (s *memStore) DeleteXP(context.Context, string, string) error { return nil }
func (s *memStore) TopXP(context.Context, string, int) ([]models.LeaderboardEntry, error) {
	return nil, nil
}
func (s *memStore) CountXP(context.Context, string) (int64, error) { return 0, nil }

func (s *memStore) GetWarns(_ context.Context, guildID, userID string) (models.Option[models.WarnRecord], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n, ok := s.warns[key(guildID, userID)]
	if !ok {
		return models.None[models.WarnRecord](), nil
	}
	return models.Some(models.WarnRecord{GuildID: guildID, UserID: userID, Warns: n}), nil
}

func (s *memStore) AddWarn(_ context.Context, guildID, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.warns[key(guildID, userID)]++
	return s.warns[key(guildID, userID)], nil
}

func (s *memStore) ResetWarns(_ context.Context, guildID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.warns, key(guildID, userID))
	return nil
}

func (s *memStore) SaveMuteJob(_ context.Context, job models.MuteJob) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[key(job.GuildID, job.UserID)] = job
	return nil
}

func (s *memStore) GetMuteJob(_ context.Context, guildID, userID string) (models.Option[models.MuteJob], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	job, ok := s.jobs[key(guildID, userID)]
	if !ok {
		return models.None[models.MuteJob](), nil
	}
	return models.Some(job), nil
}

func (s *memStore) DeleteMuteJob(_ context.Context, guildID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, key(guildID, userID))
	return nil
}

func (s *memStore) ListMuteJobs(context.Context) ([]models.MuteJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.MuteJob, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	return out, nil
}

func (s *memStore) jobCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

type fixture struct {
	store     *memStore
	platform  *fakePlatform
	scheduler *Scheduler
	engine    *Engine
}

func newFixture(mode string, users ...string) *fixture {
	store := newMemStore()
	plat := newFakePlatform(users...)
	sched := NewScheduler(store, plat)
	return &fixture{
		store:     store,
		platform:  plat,
		scheduler: sched,
		engine:    NewEngine(store, plat, sched, nil, Options{MuteMode: mode}),
	}
}
