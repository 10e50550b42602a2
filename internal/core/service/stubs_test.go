package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/righthome/cosmos-api/internal/core/domain"
	"github.com/righthome/cosmos-api/internal/core/ports"
)

// memAccountRepo is an in-memory ports.AccountRepository for tests. It mirrors
// the store semantics the services rely on: token lookups match value and
// expiry, guarded mutations enforce the last-admin invariant.
type memAccountRepo struct {
	seq      int
	accounts map[string]*domain.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *memAccountRepo) Create(_ context.Context, account *domain.Account) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == account.Email {
			return nil, domain.ErrAccountExists
		}
	}
	r.seq++
	stored := *account
	stored.ID = fmt.Sprintf("acc_%d", r.seq)
	r.accounts[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (r *memAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := r.accounts[id]; ok {
		cp := *a
		return &cp, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *memAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *memAccountRepo) List(_ context.Context) ([]*domain.Account, error) {
	out := make([]*domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		cp := *a
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memAccountRepo) FindByVerification(_ context.Context, email, token string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email && a.VerificationToken != "" && a.VerificationToken == token {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *memAccountRepo) MarkVerified(_ context.Context, id string) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.IsVerified = true
	a.VerificationToken = ""
	return nil
}

func (r *memAccountRepo) UpdateProfile(_ context.Context, id, name, phone, address string) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if name != "" {
		a.Name = name
	}
	if phone != "" {
		a.Phone = phone
	}
	if address != "" {
		a.Address = address
	}
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memAccountRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

func (r *memAccountRepo) SetResetToken(_ context.Context, id, token string, expires time.Time) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.ResetToken = token
	a.ResetTokenExpires = expires
	return nil
}

func (r *memAccountRepo) FindByResetToken(_ context.Context, token string, now time.Time) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.ResetToken != "" && a.ResetToken == token && a.ResetTokenExpires.After(now) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *memAccountRepo) ResetPassword(_ context.Context, id, passwordHash string) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = passwordHash
	a.ResetToken = ""
	a.ResetTokenExpires = time.Time{}
	return nil
}

func (r *memAccountRepo) SetPendingEmail(_ context.Context, id, email, token string, expires time.Time) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PendingEmail = email
	a.EmailChangeToken = token
	a.EmailChangeExpires = expires
	return nil
}

func (r *memAccountRepo) FindByPendingEmail(_ context.Context, email, token string, now time.Time) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.PendingEmail == email && a.EmailChangeToken != "" &&
			a.EmailChangeToken == token && a.EmailChangeExpires.After(now) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *memAccountRepo) CommitEmailChange(_ context.Context, id string) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if a.PendingEmail == "" {
		return domain.ErrAccountNotFound
	}
	a.Email = a.PendingEmail
	a.PendingEmail = ""
	a.EmailChangeToken = ""
	a.EmailChangeExpires = time.Time{}
	a.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memAccountRepo) SetRole(_ context.Context, id, role string) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.Role = role
	return nil
}

func (r *memAccountRepo) SetRoleGuarded(ctx context.Context, id, role string) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if a.IsAdmin() && r.adminCount() <= 1 {
		return domain.ErrLastAdmin
	}
	a.Role = role
	return nil
}

func (r *memAccountRepo) DeleteGuarded(_ context.Context, id string) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	if a.IsAdmin() && r.adminCount() <= 1 {
		return domain.ErrLastAdmin
	}
	delete(r.accounts, id)
	return nil
}

func (r *memAccountRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(r.accounts)), nil
}

func (r *memAccountRepo) CountAdmins(_ context.Context) (int64, error) {
	return r.adminCount(), nil
}

func (r *memAccountRepo) MonthlyCounts(_ context.Context, since time.Time) ([]ports.MonthCount, error) {
	buckets := make(map[[2]int]int64)
	for _, a := range r.accounts {
		if a.CreatedAt.Before(since) {
			continue
		}
		k := [2]int{a.CreatedAt.Year(), int(a.CreatedAt.Month())}
		buckets[k]++
	}
	out := make([]ports.MonthCount, 0, len(buckets))
	for k, n := range buckets {
		out = append(out, ports.MonthCount{Year: k[0], Month: k[1], Count: n})
	}
	return out, nil
}

func (r *memAccountRepo) adminCount() int64 {
	var n int64
	for _, a := range r.accounts {
		if a.IsAdmin() {
			n++
		}
	}
	return n
}

// stubMailer records sent mail and can be told to fail.
type stubMailer struct {
	fail bool
	sent []sentMail
}

type sentMail struct {
	To      string
	Subject string
	Body    string
}

func (m *stubMailer) Send(_ context.Context, to, subject, body string) error {
	if m.fail {
		return fmt.Errorf("smtp unavailable")
	}
	m.sent = append(m.sent, sentMail{To: to, Subject: subject, Body: body})
	return nil
}

// stubThrottle is an in-memory LoginThrottle.
type stubThrottle struct {
	failures map[string]int
	limit    int
}

func newStubThrottle(limit int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), limit: limit}
}

func (t *stubThrottle) TooManyFailures(_ context.Context, email string) (bool, error) {
	return t.failures[email] >= t.limit, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, email string) error {
	t.failures[email]++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, email string) error {
	delete(t.failures, email)
	return nil
}

// memConsultationRepo is an in-memory ports.ConsultationRepository.
type memConsultationRepo struct {
	seq   int
	leads map[string]*domain.Consultation
}

func newMemConsultationRepo() *memConsultationRepo {
	return &memConsultationRepo{leads: make(map[string]*domain.Consultation)}
}

func (r *memConsultationRepo) Create(_ context.Context, c *domain.Consultation) (*domain.Consultation, error) {
	r.seq++
	stored := *c
	stored.ID = fmt.Sprintf("cons_%d", r.seq)
	r.leads[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (r *memConsultationRepo) FindByID(_ context.Context, id string) (*domain.Consultation, error) {
	if c, ok := r.leads[id]; ok {
		cp := *c
		return &cp, nil
	}
	return nil, domain.ErrConsultationNotFound
}

func (r *memConsultationRepo) List(_ context.Context) ([]*domain.Consultation, error) {
	out := make([]*domain.Consultation, 0, len(r.leads))
	for _, c := range r.leads {
		cp := *c
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memConsultationRepo) Update(_ context.Context, c *domain.Consultation) error {
	if _, ok := r.leads[c.ID]; !ok {
		return domain.ErrConsultationNotFound
	}
	cp := *c
	r.leads[c.ID] = &cp
	return nil
}

func (r *memConsultationRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.leads[id]; !ok {
		return domain.ErrConsultationNotFound
	}
	delete(r.leads, id)
	return nil
}

func (r *memConsultationRepo) CountAll(_ context.Context) (int64, error) {
	return int64(len(r.leads)), nil
}

func (r *memConsultationRepo) CountByStatus(_ context.Context, status domain.ConsultationStatus) (int64, error) {
	var n int64
	for _, c := range r.leads {
		if c.Status == status {
			n++
		}
	}
	return n, nil
}

func (r *memConsultationRepo) MonthlyCounts(_ context.Context, since time.Time) ([]ports.MonthCount, error) {
	buckets := make(map[[2]int]int64)
	for _, c := range r.leads {
		if c.CreatedAt.Before(since) {
			continue
		}
		k := [2]int{c.CreatedAt.Year(), int(c.CreatedAt.Month())}
		buckets[k]++
	}
	out := make([]ports.MonthCount, 0, len(buckets))
	for k, n := range buckets {
		out = append(out, ports.MonthCount{Year: k[0], Month: k[1], Count: n})
	}
	return out, nil
}

// memGalleryRepo is an in-memory ports.GalleryRepository.
type memGalleryRepo struct {
	seq        int
	images     map[string]*domain.ProjectImage
	createFail bool
}

func newMemGalleryRepo() *memGalleryRepo {
	return &memGalleryRepo{images: make(map[string]*domain.ProjectImage)}
}

func (r *memGalleryRepo) Create(_ context.Context, img *domain.ProjectImage) (*domain.ProjectImage, error) {
	if r.createFail {
		return nil, fmt.Errorf("insert failed")
	}
	r.seq++
	stored := *img
	stored.ID = fmt.Sprintf("img_%d", r.seq)
	r.images[stored.ID] = &stored
	cp := stored
	return &cp, nil
}

func (r *memGalleryRepo) FindByID(_ context.Context, id string) (*domain.ProjectImage, error) {
	if img, ok := r.images[id]; ok {
		cp := *img
		return &cp, nil
	}
	return nil, domain.ErrImageNotFound
}

func (r *memGalleryRepo) ListByService(_ context.Context, service string) ([]*domain.ProjectImage, error) {
	var out []*domain.ProjectImage
	for _, img := range r.images {
		if img.Service == service {
			cp := *img
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memGalleryRepo) UpdateMeta(_ context.Context, img *domain.ProjectImage) error {
	if _, ok := r.images[img.ID]; !ok {
		return domain.ErrImageNotFound
	}
	cp := *img
	r.images[img.ID] = &cp
	return nil
}

func (r *memGalleryRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.images[id]; !ok {
		return domain.ErrImageNotFound
	}
	delete(r.images, id)
	return nil
}

// stubObjectStore records puts and deletes in memory.
type stubObjectStore struct {
	objects map[string][]byte
	deleted []string
}

func newStubObjectStore() *stubObjectStore {
	return &stubObjectStore{objects: make(map[string][]byte)}
}

func (s *stubObjectStore) Put(_ context.Context, key, _ string, data []byte) (string, error) {
	s.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (s *stubObjectStore) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	s.deleted = append(s.deleted, key)
	return nil
}
