package repository

import (
	"context"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/SheharBano-Sheri/ebay-businessManagement-sub001/internal/models"
)

// MemoryStore keeps every collection in process memory. It backs local
// development (store.driver=memory) and the service tests. InTx serializes
// transactions and, when fn fails, undoes only the rows fn wrote.
type MemoryStore struct {
	mu       sync.RWMutex
	txMu     sync.Mutex
	users    map[string]models.User
	sessions map[string]models.Session
	vendors  map[string]models.Vendor
	products map[string]models.Product
	members  map[string]models.TeamMember
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    map[string]models.User{},
		sessions: map[string]models.Session{},
		vendors:  map[string]models.Vendor{},
		products: map[string]models.Product{},
		members:  map[string]models.TeamMember{},
		now:      time.Now,
	}
}

func (m *MemoryStore) Users() Users             { return memUsers{m, nil} }
func (m *MemoryStore) Sessions() Sessions       { return memSessions{m, nil} }
func (m *MemoryStore) Vendors() Vendors         { return memVendors{m, nil} }
func (m *MemoryStore) Products() Products       { return memProducts{m, nil} }
func (m *MemoryStore) TeamMembers() TeamMembers { return memTeamMembers{m, nil} }

func (m *MemoryStore) Ping(context.Context) error { return nil }

func (m *MemoryStore) InTx(ctx context.Context, fn func(Store) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()

	j := &journal{}
	if err := fn(memoryTx{MemoryStore: m, j: j}); err != nil {
		m.mu.Lock()
		j.rollback()
		m.mu.Unlock()
		return err
	}
	return nil
}

// journal records the prior value of every row a transaction writes.
// Writes outside the transaction are left alone on rollback.
type journal struct {
	undo []func()
}

// remember must be called with mu held, before the row at id changes.
func remember[V any](j *journal, rows map[string]V, id string) {
	if j == nil {
		return
	}
	prev, existed := rows[id]
	j.undo = append(j.undo, func() {
		if existed {
			rows[id] = prev
		} else {
			delete(rows, id)
		}
	})
}

func (j *journal) rollback() {
	for i := len(j.undo) - 1; i >= 0; i-- {
		j.undo[i]()
	}
	j.undo = nil
}

type memoryTx struct {
	*MemoryStore
	j *journal
}

func (t memoryTx) Users() Users             { return memUsers{t.MemoryStore, t.j} }
func (t memoryTx) Sessions() Sessions       { return memSessions{t.MemoryStore, t.j} }
func (t memoryTx) Vendors() Vendors         { return memVendors{t.MemoryStore, t.j} }
func (t memoryTx) Products() Products       { return memProducts{t.MemoryStore, t.j} }
func (t memoryTx) TeamMembers() TeamMembers { return memTeamMembers{t.MemoryStore, t.j} }

func (t memoryTx) InTx(_ context.Context, fn func(Store) error) error {
	return fn(t)
}

type memUsers struct {
	m *MemoryStore
	j *journal
}

func (r memUsers) Create(_ context.Context, user models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.users {
		if existing.Email == user.Email {
			return ErrDuplicate
		}
	}
	if _, ok := r.m.users[user.ID]; ok {
		return ErrDuplicate
	}
	now := r.m.now()
	user.CreatedAt, user.UpdatedAt = now, now
	user.Permissions = user.Permissions.Clone()
	remember(r.j, r.m.users, user.ID)
	r.m.users[user.ID] = user
	return nil
}

func (r memUsers) GetByID(_ context.Context, id string) (models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	user, ok := r.m.users[id]
	if !ok {
		return models.User{}, ErrUserNotFound
	}
	user.Permissions = user.Permissions.Clone()
	return user, nil
}

func (r memUsers) find(match func(models.User) bool) (models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, user := range r.m.users {
		if match(user) {
			user.Permissions = user.Permissions.Clone()
			return user, nil
		}
	}
	return models.User{}, ErrUserNotFound
}

func (r memUsers) FindByEmail(_ context.Context, email string) (models.User, error) {
	return r.find(func(u models.User) bool { return u.Email == email })
}

func (r memUsers) FindByVerificationToken(_ context.Context, token string) (models.User, error) {
	return r.find(func(u models.User) bool {
		return u.EmailVerificationToken != nil && *u.EmailVerificationToken == token
	})
}

func (r memUsers) ListByPlanStatus(_ context.Context, status models.ApprovalStatus) ([]models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var out []models.User
	for _, user := range r.m.users {
		if user.PlanApprovalStatus == status && user.Role != models.UserRoleMasterAdmin {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return olderFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r memUsers) update(id string, fn func(*models.User) error) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	user, ok := r.m.users[id]
	if !ok {
		return ErrUserNotFound
	}
	if err := fn(&user); err != nil {
		return err
	}
	user.UpdatedAt = r.m.now()
	remember(r.j, r.m.users, id)
	r.m.users[id] = user
	return nil
}

func (r memUsers) ApplyAccountDecision(_ context.Context, id string, decision AccountDecision) error {
	err := r.update(id, func(u *models.User) error {
		if u.PlanApprovalStatus != models.ApprovalPending {
			return ErrNotPending
		}
		u.PlanApprovalStatus = decision.Status
		u.IsActive = decision.IsActive
		if decision.VendorApprovalStatus != nil {
			u.VendorApprovalStatus = *decision.VendorApprovalStatus
		}
		return nil
	})
	if err == ErrUserNotFound {
		return ErrNotPending
	}
	return err
}

func (r memUsers) SetVendorApproval(_ context.Context, id string, status models.ApprovalStatus, isActive bool) error {
	return r.update(id, func(u *models.User) error {
		u.VendorApprovalStatus = status
		u.IsActive = isActive
		return nil
	})
}

func (r memUsers) SetActive(_ context.Context, id string, isActive bool) error {
	return r.update(id, func(u *models.User) error {
		u.IsActive = isActive
		return nil
	})
}

func (r memUsers) SetPermissions(_ context.Context, id string, permissions models.Permissions) error {
	return r.update(id, func(u *models.User) error {
		u.Permissions = permissions.Clone()
		return nil
	})
}

func (r memUsers) Reinstate(_ context.Context, id string, reinstate Reinstatement) error {
	return r.update(id, func(u *models.User) error {
		u.Name = reinstate.Name
		u.PasswordHash = slices.Clone(reinstate.PasswordHash)
		u.Permissions = reinstate.Permissions.Clone()
		u.IsActive = true
		u.IsEmailVerified = true
		return nil
	})
}

func (r memUsers) SetVerificationToken(_ context.Context, id string, token string, expiry time.Time) error {
	return r.update(id, func(u *models.User) error {
		u.EmailVerificationToken = &token
		u.EmailVerificationTokenExpiry = &expiry
		u.EmailVerificationTokenUsed = false
		return nil
	})
}

func (r memUsers) MarkEmailVerified(_ context.Context, id string) error {
	return r.update(id, func(u *models.User) error {
		u.IsEmailVerified = true
		u.EmailVerificationTokenUsed = true
		return nil
	})
}

func (r memUsers) Delete(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.users[id]; !ok {
		return ErrUserNotFound
	}
	remember(r.j, r.m.users, id)
	delete(r.m.users, id)
	return nil
}

type memSessions struct {
	m *MemoryStore
	j *journal
}

func (r memSessions) Create(_ context.Context, session models.Session) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.sessions {
		if existing.SessionToken == session.SessionToken {
			return ErrDuplicate
		}
	}
	session.LastActive = session.CreatedAt
	remember(r.j, r.m.sessions, session.ID)
	r.m.sessions[session.ID] = session
	return nil
}

func (r memSessions) FindByToken(_ context.Context, token string) (models.Session, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, session := range r.m.sessions {
		if session.SessionToken == token {
			return session, nil
		}
	}
	return models.Session{}, ErrSessionNotFound
}

func (r memSessions) ListByUser(_ context.Context, userID string) ([]models.Session, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return r.byUser(userID, false), nil
}

// byUser returns the user's sessions, most recently active first.
// Callers must hold the lock.
func (r memSessions) byUser(userID string, activeOnly bool) []models.Session {
	var out []models.Session
	for _, session := range r.m.sessions {
		if session.UserID != userID || (activeOnly && !session.IsActive) {
			continue
		}
		out = append(out, session)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].LastActive.Equal(out[j].LastActive) {
			return out[i].ID > out[j].ID
		}
		return out[i].LastActive.After(out[j].LastActive)
	})
	return out
}

func (r memSessions) Touch(_ context.Context, id string, at time.Time) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	session, ok := r.m.sessions[id]
	if !ok {
		return nil
	}
	session.LastActive = at
	remember(r.j, r.m.sessions, id)
	r.m.sessions[id] = session
	return nil
}

func (r memSessions) Deactivate(_ context.Context, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	session, ok := r.m.sessions[id]
	if !ok {
		return ErrSessionNotFound
	}
	session.IsActive = false
	remember(r.j, r.m.sessions, id)
	r.m.sessions[id] = session
	return nil
}

func (r memSessions) deactivateWhere(match func(models.Session) bool) int64 {
	var n int64
	for id, session := range r.m.sessions {
		if session.IsActive && match(session) {
			remember(r.j, r.m.sessions, id)
			session.IsActive = false
			r.m.sessions[id] = session
			n++
		}
	}
	return n
}

func (r memSessions) DeactivateByUser(_ context.Context, userID string) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.deactivateWhere(func(s models.Session) bool { return s.UserID == userID }), nil
}

func (r memSessions) DeactivateOldest(_ context.Context, userID string, keepLatest int) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	active := r.byUser(userID, true)
	if len(active) <= keepLatest {
		return nil
	}
	for _, session := range active[keepLatest:] {
		session.IsActive = false
		remember(r.j, r.m.sessions, session.ID)
		r.m.sessions[session.ID] = session
	}
	return nil
}

func (r memSessions) DeactivateExpired(_ context.Context, now time.Time) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	return r.deactivateWhere(func(s models.Session) bool { return !s.ExpiresAt.After(now) }), nil
}

type memVendors struct {
	m *MemoryStore
	j *journal
}

func (r memVendors) Create(_ context.Context, vendor models.Vendor) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.vendors[vendor.ID]; ok {
		return ErrDuplicate
	}
	now := r.m.now()
	vendor.CreatedAt, vendor.UpdatedAt = now, now
	remember(r.j, r.m.vendors, vendor.ID)
	r.m.vendors[vendor.ID] = vendor
	return nil
}

func (r memVendors) GetByID(_ context.Context, id string) (models.Vendor, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	vendor, ok := r.m.vendors[id]
	if !ok {
		return models.Vendor{}, ErrVendorNotFound
	}
	return vendor, nil
}

func (r memVendors) FindByPublicUser(_ context.Context, userID string) (models.Vendor, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, vendor := range r.m.vendors {
		if vendor.PublicVendorUserID != nil && *vendor.PublicVendorUserID == userID {
			return vendor, nil
		}
	}
	return models.Vendor{}, ErrVendorNotFound
}

func (r memVendors) filter(match func(models.Vendor) bool, newestFirst bool) []models.Vendor {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var out []models.Vendor
	for _, vendor := range r.m.vendors {
		if match(vendor) {
			out = append(out, vendor)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		older := olderFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
		if newestFirst {
			return !older
		}
		return older
	})
	return out
}

func (r memVendors) ListByAdmin(_ context.Context, adminID string) ([]models.Vendor, error) {
	return r.filter(func(v models.Vendor) bool { return adminID == "" || v.AdminID == adminID }, true), nil
}

func (r memVendors) ListByApprovalStatus(_ context.Context, status models.ApprovalStatus) ([]models.Vendor, error) {
	return r.filter(func(v models.Vendor) bool { return v.ApprovalStatus == status }, false), nil
}

func (r memVendors) ApplyDecision(_ context.Context, id string, decision VendorDecision) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	vendor, ok := r.m.vendors[id]
	if !ok || vendor.ApprovalStatus != models.ApprovalPending {
		return ErrNotPending
	}
	vendor.ApprovalStatus = decision.Status
	vendor.Status = decision.VendorState
	vendor.IsActive = decision.IsActive
	if decision.AutoApprove != nil {
		vendor.AutoApproveInventory = *decision.AutoApprove
	}
	if decision.Status == models.ApprovalApproved {
		by, at := decision.DecidedBy, decision.DecidedAt
		vendor.ApprovedBy, vendor.ApprovedAt = &by, &at
	}
	vendor.UpdatedAt = r.m.now()
	remember(r.j, r.m.vendors, id)
	r.m.vendors[id] = vendor
	return nil
}

func (r memVendors) SetAutoApprove(_ context.Context, id string, enabled bool) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	vendor, ok := r.m.vendors[id]
	if !ok {
		return ErrVendorNotFound
	}
	vendor.AutoApproveInventory = enabled
	vendor.UpdatedAt = r.m.now()
	remember(r.j, r.m.vendors, id)
	r.m.vendors[id] = vendor
	return nil
}

type memProducts struct {
	m *MemoryStore
	j *journal
}

func (r memProducts) Create(_ context.Context, product models.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	if _, ok := r.m.products[product.ID]; ok {
		return ErrDuplicate
	}
	now := r.m.now()
	product.CreatedAt, product.UpdatedAt = now, now
	remember(r.j, r.m.products, product.ID)
	r.m.products[product.ID] = product
	return nil
}

func (r memProducts) GetByID(_ context.Context, id string) (models.Product, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	product, ok := r.m.products[id]
	if !ok {
		return models.Product{}, ErrProductNotFound
	}
	return product, nil
}

func (r memProducts) filter(match func(models.Product) bool, newestFirst bool) []models.Product {
	var out []models.Product
	for _, product := range r.m.products {
		if match(product) {
			out = append(out, product)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		older := olderFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
		if newestFirst {
			return !older
		}
		return older
	})
	return out
}

func (r memProducts) ListByAdmin(_ context.Context, adminID string) ([]models.Product, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return r.filter(func(p models.Product) bool { return adminID == "" || p.AdminID == adminID }, true), nil
}

func (r memProducts) ListPendingForPublicVendors(_ context.Context) ([]models.Product, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return r.filter(func(p models.Product) bool {
		vendor, ok := r.m.vendors[p.VendorID]
		return ok && p.ApprovalStatus == models.ApprovalPending && vendor.VendorType == models.VendorTypePublic
	}, false), nil
}

func (r memProducts) applyPending(ids []string, apply func(*models.Product)) []string {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	var changed []string
	for _, id := range ids {
		product, ok := r.m.products[id]
		if !ok || product.ApprovalStatus != models.ApprovalPending || slices.Contains(changed, id) {
			continue
		}
		apply(&product)
		product.UpdatedAt = r.m.now()
		remember(r.j, r.m.products, id)
		r.m.products[id] = product
		changed = append(changed, id)
	}
	return changed
}

func (r memProducts) ApprovePending(_ context.Context, ids []string, approverID string, at time.Time) ([]string, error) {
	return r.applyPending(ids, func(p *models.Product) {
		p.ApprovalStatus = models.ApprovalApproved
		p.IsApproved = true
		p.ApprovedBy, p.ApprovedAt = &approverID, &at
	}), nil
}

func (r memProducts) RejectPending(_ context.Context, ids []string, rejecterID string, at time.Time) ([]string, error) {
	return r.applyPending(ids, func(p *models.Product) {
		p.ApprovalStatus = models.ApprovalRejected
		p.IsActive = false
		p.RejectedBy, p.RejectedAt = &rejecterID, &at
	}), nil
}

type memTeamMembers struct {
	m *MemoryStore
	j *journal
}

func (r memTeamMembers) Create(_ context.Context, member models.TeamMember) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.members {
		if existing.ID == member.ID || (existing.AdminID == member.AdminID && existing.Email == member.Email) {
			return ErrDuplicate
		}
	}
	now := r.m.now()
	member.CreatedAt, member.UpdatedAt = now, now
	member.Permissions = member.Permissions.Clone()
	remember(r.j, r.m.members, member.ID)
	r.m.members[member.ID] = member
	return nil
}

func (r memTeamMembers) find(match func(models.TeamMember) bool) (models.TeamMember, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, member := range r.m.members {
		if match(member) {
			member.Permissions = member.Permissions.Clone()
			return member, nil
		}
	}
	return models.TeamMember{}, ErrTeamMemberNotFound
}

func (r memTeamMembers) GetByID(_ context.Context, id string) (models.TeamMember, error) {
	return r.find(func(tm models.TeamMember) bool { return tm.ID == id })
}

func (r memTeamMembers) FindByEmail(_ context.Context, adminID, email string) (models.TeamMember, error) {
	return r.find(func(tm models.TeamMember) bool { return tm.AdminID == adminID && tm.Email == email })
}

func (r memTeamMembers) FindByInviteToken(_ context.Context, token string) (models.TeamMember, error) {
	return r.find(func(tm models.TeamMember) bool { return tm.InviteToken != nil && *tm.InviteToken == token })
}

func (r memTeamMembers) ListByAdmin(_ context.Context, adminID string) ([]models.TeamMember, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	var out []models.TeamMember
	for _, member := range r.m.members {
		if member.AdminID == adminID {
			out = append(out, member)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return olderFirst(out[i].CreatedAt, out[j].CreatedAt, out[i].ID, out[j].ID)
	})
	return out, nil
}

func (r memTeamMembers) Update(_ context.Context, member models.TeamMember) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	existing, ok := r.m.members[member.ID]
	if !ok {
		return ErrTeamMemberNotFound
	}
	member.AdminID, member.Email, member.CreatedAt = existing.AdminID, existing.Email, existing.CreatedAt
	member.UpdatedAt = r.m.now()
	member.Permissions = member.Permissions.Clone()
	remember(r.j, r.m.members, member.ID)
	r.m.members[member.ID] = member
	return nil
}

func olderFirst(a, b time.Time, idA, idB string) bool {
	if a.Equal(b) {
		return idA < idB
	}
	return a.Before(b)
}
