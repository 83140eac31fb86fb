package services

import (
	"context"
	"time"

	"sacco-hub/internal/adapters/persistence/models"
	"sacco-hub/internal/adapters/persistence/repositories"

	"gorm.io/gorm"
)

// In-memory fakes for the repository interfaces. They store copies so that
// mutations on returned records do not leak back without an explicit save,
// mirroring how the database behaves.

// ------------------------------------------------------------
// Users
// ------------------------------------------------------------

type fakeUserRepo struct {
	users  map[uint]*models.User
	nextID uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User), nextID: 1}
}

func (r *fakeUserRepo) add(u *models.User) *models.User {
	if u.ID == 0 {
		u.ID = r.nextID
		r.nextID++
	} else if u.ID >= r.nextID {
		r.nextID = u.ID + 1
	}
	cp := *u
	r.users[u.ID] = &cp
	return u
}

func (r *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	r.add(user)
	return nil
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) GetByPhoneNumber(ctx context.Context, phoneNumber string) (*models.User, error) {
	for _, u := range r.users {
		if u.PhoneNumber == phoneNumber {
			cp := *u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	delete(r.users, id)
	return nil
}

func (r *fakeUserRepo) List(ctx context.Context, offset, limit int) ([]*models.User, int64, error) {
	out := make([]*models.User, 0, len(r.users))
	for _, u := range r.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) ExistsByPhoneNumber(ctx context.Context, phoneNumber string) (bool, error) {
	for _, u := range r.users {
		if u.PhoneNumber == phoneNumber {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRepo) CountByRole(ctx context.Context, role string) (int64, error) {
	var n int64
	for _, u := range r.users {
		if u.Role == role {
			n++
		}
	}
	return n, nil
}

// ------------------------------------------------------------
// Applications
// ------------------------------------------------------------

type fakeApplicationRepo struct {
	apps   map[uint]*models.Application
	nextID uint
}

func newFakeApplicationRepo() *fakeApplicationRepo {
	return &fakeApplicationRepo{apps: make(map[uint]*models.Application), nextID: 1}
}

func (r *fakeApplicationRepo) Create(ctx context.Context, app *models.Application) error {
	app.ID = r.nextID
	r.nextID++
	if app.SubmittedAt.IsZero() {
		app.SubmittedAt = time.Now()
	}
	cp := *app
	r.apps[app.ID] = &cp
	return nil
}

func (r *fakeApplicationRepo) GetByID(ctx context.Context, id uint) (*models.Application, error) {
	app, ok := r.apps[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *app
	return &cp, nil
}

func (r *fakeApplicationRepo) ListByUser(ctx context.Context, userID uint) ([]*models.Application, error) {
	out := make([]*models.Application, 0)
	for _, app := range r.apps {
		if app.UserID == userID {
			cp := *app
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) List(ctx context.Context, offset, limit int) ([]*models.Application, int64, error) {
	out := make([]*models.Application, 0, len(r.apps))
	for _, app := range r.apps {
		cp := *app
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeApplicationRepo) ListPending(ctx context.Context) ([]*models.Application, error) {
	out := make([]*models.Application, 0)
	for _, app := range r.apps {
		if !app.IsTerminal() {
			cp := *app
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeApplicationRepo) CountPending(ctx context.Context) (int64, error) {
	var n int64
	for _, app := range r.apps {
		if !app.IsTerminal() {
			n++
		}
	}
	return n, nil
}

func (r *fakeApplicationRepo) UpdateFromStatus(ctx context.Context, app *models.Application, fromStatus string) (bool, error) {
	stored, ok := r.apps[app.ID]
	if !ok || stored.Status != fromStatus {
		return false, nil
	}
	cp := *app
	r.apps[app.ID] = &cp
	return true, nil
}

// ------------------------------------------------------------
// Ledger
// ------------------------------------------------------------

type balanceKey struct {
	memberID uint
	typeID   uint
}

type fakeLedgerRepo struct {
	contributions map[uint]*models.Contribution
	balances      map[balanceKey]*models.SACCOBalance
	summaries     map[uint]*models.ContributionSummary
	types         map[uint]*models.ContributionType
	nextID        uint
	nextBalanceID uint
	nextSummaryID uint
}

func newFakeLedgerRepo() *fakeLedgerRepo {
	return &fakeLedgerRepo{
		contributions: make(map[uint]*models.Contribution),
		balances:      make(map[balanceKey]*models.SACCOBalance),
		summaries:     make(map[uint]*models.ContributionSummary),
		types:         make(map[uint]*models.ContributionType),
		nextID:        1,
		nextBalanceID: 1,
		nextSummaryID: 1,
	}
}

func (r *fakeLedgerRepo) addType(ct *models.ContributionType) {
	r.types[ct.ID] = ct
}

func (r *fakeLedgerRepo) Transaction(ctx context.Context, fn func(repositories.LedgerRepository) error) error {
	return fn(r)
}

func (r *fakeLedgerRepo) CreateContribution(ctx context.Context, c *models.Contribution) error {
	c.ID = r.nextID
	r.nextID++
	if c.SubmittedAt.IsZero() {
		c.SubmittedAt = time.Now()
	}
	cp := *c
	r.contributions[c.ID] = &cp
	return nil
}

func (r *fakeLedgerRepo) GetContribution(ctx context.Context, id uint) (*models.Contribution, error) {
	c, ok := r.contributions[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeLedgerRepo) ExistsByTransactionCode(ctx context.Context, code string) (bool, error) {
	for _, c := range r.contributions {
		if c.MpesaTransactionCode == code {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLedgerRepo) ListContributions(ctx context.Context, offset, limit int) ([]*models.Contribution, int64, error) {
	out := make([]*models.Contribution, 0, len(r.contributions))
	for _, c := range r.contributions {
		cp := *c
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeLedgerRepo) ListContributionsByMember(ctx context.Context, memberID uint) ([]*models.Contribution, error) {
	out := make([]*models.Contribution, 0)
	for _, c := range r.contributions {
		if c.MemberID == memberID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) ListPendingContributions(ctx context.Context) ([]*models.Contribution, error) {
	out := make([]*models.Contribution, 0)
	for _, c := range r.contributions {
		if c.Status == models.ContributionStatusPending {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) CountPendingContributions(ctx context.Context) (int64, error) {
	var n int64
	for _, c := range r.contributions {
		if c.Status == models.ContributionStatusPending {
			n++
		}
	}
	return n, nil
}

func (r *fakeLedgerRepo) MarkVerified(ctx context.Context, id, verifierID uint, at time.Time) (bool, error) {
	c, ok := r.contributions[id]
	if !ok || c.Status != models.ContributionStatusPending {
		return false, nil
	}
	c.Status = models.ContributionStatusVerified
	c.VerifiedByID = &verifierID
	c.VerifiedAt = &at
	return true, nil
}

func (r *fakeLedgerRepo) MarkRejected(ctx context.Context, id, verifierID uint, at time.Time, reason string) (bool, error) {
	c, ok := r.contributions[id]
	if !ok || c.Status != models.ContributionStatusPending {
		return false, nil
	}
	c.Status = models.ContributionStatusRejected
	c.VerifiedByID = &verifierID
	c.VerifiedAt = &at
	c.RejectionReason = reason
	return true, nil
}

func (r *fakeLedgerRepo) GetOrCreateBalance(ctx context.Context, memberID, typeID uint) (*models.SACCOBalance, error) {
	key := balanceKey{memberID: memberID, typeID: typeID}
	if b, ok := r.balances[key]; ok {
		cp := *b
		return &cp, nil
	}
	b := &models.SACCOBalance{
		ID:                 r.nextBalanceID,
		MemberID:           memberID,
		ContributionTypeID: typeID,
	}
	r.nextBalanceID++
	r.balances[key] = b
	cp := *b
	return &cp, nil
}

func (r *fakeLedgerRepo) SaveBalance(ctx context.Context, b *models.SACCOBalance) error {
	cp := *b
	r.balances[balanceKey{memberID: b.MemberID, typeID: b.ContributionTypeID}] = &cp
	return nil
}

func (r *fakeLedgerRepo) ListBalancesByMember(ctx context.Context, memberID uint) ([]*models.SACCOBalance, error) {
	out := make([]*models.SACCOBalance, 0)
	for key, b := range r.balances {
		if key.memberID == memberID {
			cp := *b
			if ct, ok := r.types[b.ContributionTypeID]; ok {
				cp.ContributionType = ct
			}
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeLedgerRepo) ListBalances(ctx context.Context) ([]*models.SACCOBalance, error) {
	out := make([]*models.SACCOBalance, 0, len(r.balances))
	for _, b := range r.balances {
		cp := *b
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLedgerRepo) CountActiveMembers(ctx context.Context, typeID uint) (int64, error) {
	var n int64
	for key, b := range r.balances {
		if key.typeID == typeID && b.TotalBalance > 0 {
			n++
		}
	}
	return n, nil
}

func (r *fakeLedgerRepo) GetOrCreateSummary(ctx context.Context, typeID uint) (*models.ContributionSummary, error) {
	if s, ok := r.summaries[typeID]; ok {
		cp := *s
		return &cp, nil
	}
	s := &models.ContributionSummary{
		ID:                 r.nextSummaryID,
		ContributionTypeID: typeID,
	}
	r.nextSummaryID++
	r.summaries[typeID] = s
	cp := *s
	return &cp, nil
}

func (r *fakeLedgerRepo) SaveSummary(ctx context.Context, s *models.ContributionSummary) error {
	cp := *s
	r.summaries[s.ContributionTypeID] = &cp
	return nil
}

func (r *fakeLedgerRepo) ListSummaries(ctx context.Context) ([]*models.ContributionSummary, error) {
	out := make([]*models.ContributionSummary, 0, len(r.summaries))
	for _, s := range r.summaries {
		cp := *s
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeLedgerRepo) ListContributionTypes(ctx context.Context, activeOnly bool) ([]*models.ContributionType, error) {
	out := make([]*models.ContributionType, 0, len(r.types))
	for _, ct := range r.types {
		if activeOnly && !ct.IsActive {
			continue
		}
		out = append(out, ct)
	}
	return out, nil
}

func (r *fakeLedgerRepo) GetContributionType(ctx context.Context, id uint) (*models.ContributionType, error) {
	ct, ok := r.types[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ct, nil
}

// ------------------------------------------------------------
// Accounts
// ------------------------------------------------------------

type fakeAccountRepo struct {
	spouses       map[uint]*models.SpouseDetails
	children      map[uint]*models.Child
	beneficiaries map[uint]*models.Beneficiary
	nextOfKin     map[uint]*models.NextOfKin
	nextID        uint
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		spouses:       make(map[uint]*models.SpouseDetails),
		children:      make(map[uint]*models.Child),
		beneficiaries: make(map[uint]*models.Beneficiary),
		nextOfKin:     make(map[uint]*models.NextOfKin),
		nextID:        1,
	}
}

func (r *fakeAccountRepo) GetSpouse(ctx context.Context, userID uint) (*models.SpouseDetails, error) {
	s, ok := r.spouses[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeAccountRepo) SaveSpouse(ctx context.Context, spouse *models.SpouseDetails) error {
	if spouse.ID == 0 {
		spouse.ID = r.nextID
		r.nextID++
	}
	cp := *spouse
	r.spouses[spouse.UserID] = &cp
	return nil
}

func (r *fakeAccountRepo) ListChildren(ctx context.Context, userID uint) ([]*models.Child, error) {
	out := make([]*models.Child, 0)
	for _, c := range r.children {
		if c.UserID == userID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) GetChild(ctx context.Context, id uint) (*models.Child, error) {
	c, ok := r.children[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (r *fakeAccountRepo) CreateChild(ctx context.Context, child *models.Child) error {
	child.ID = r.nextID
	r.nextID++
	cp := *child
	r.children[child.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) SaveChild(ctx context.Context, child *models.Child) error {
	cp := *child
	r.children[child.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) DeleteChild(ctx context.Context, id uint) error {
	delete(r.children, id)
	return nil
}

func (r *fakeAccountRepo) ListBeneficiaries(ctx context.Context, userID uint) ([]*models.Beneficiary, error) {
	out := make([]*models.Beneficiary, 0)
	for _, b := range r.beneficiaries {
		if b.UserID == userID {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) ListActiveBeneficiaries(ctx context.Context, userID uint) ([]*models.Beneficiary, error) {
	out := make([]*models.Beneficiary, 0)
	for _, b := range r.beneficiaries {
		if b.UserID == userID && b.Status == models.BeneficiaryStatusActive {
			cp := *b
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeAccountRepo) GetBeneficiary(ctx context.Context, id uint) (*models.Beneficiary, error) {
	b, ok := r.beneficiaries[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *b
	return &cp, nil
}

func (r *fakeAccountRepo) CreateBeneficiary(ctx context.Context, b *models.Beneficiary) error {
	b.ID = r.nextID
	r.nextID++
	cp := *b
	r.beneficiaries[b.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) SaveBeneficiary(ctx context.Context, b *models.Beneficiary) error {
	cp := *b
	r.beneficiaries[b.ID] = &cp
	return nil
}

func (r *fakeAccountRepo) DeleteBeneficiary(ctx context.Context, id uint) error {
	delete(r.beneficiaries, id)
	return nil
}

func (r *fakeAccountRepo) GetNextOfKin(ctx context.Context, userID uint) (*models.NextOfKin, error) {
	nok, ok := r.nextOfKin[userID]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *nok
	return &cp, nil
}

func (r *fakeAccountRepo) SaveNextOfKin(ctx context.Context, nok *models.NextOfKin) error {
	if nok.ID == 0 {
		nok.ID = r.nextID
		r.nextID++
	}
	cp := *nok
	r.nextOfKin[nok.UserID] = &cp
	return nil
}

// ------------------------------------------------------------
// Documents
// ------------------------------------------------------------

type fakeDocumentRepo struct {
	docs       map[uint]*models.Document
	categories map[uint]*models.DocumentCategory
	nextID     uint
}

func newFakeDocumentRepo() *fakeDocumentRepo {
	return &fakeDocumentRepo{
		docs:       make(map[uint]*models.Document),
		categories: make(map[uint]*models.DocumentCategory),
		nextID:     1,
	}
}

func (r *fakeDocumentRepo) addCategory(c *models.DocumentCategory) {
	r.categories[c.ID] = c
}

func (r *fakeDocumentRepo) Create(ctx context.Context, doc *models.Document) error {
	doc.ID = r.nextID
	r.nextID++
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) GetByID(ctx context.Context, id uint) (*models.Document, error) {
	d, ok := r.docs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocumentRepo) ListByUser(ctx context.Context, userID uint) ([]*models.Document, error) {
	out := make([]*models.Document, 0)
	for _, d := range r.docs {
		if d.UserID == userID {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) List(ctx context.Context, offset, limit int) ([]*models.Document, int64, error) {
	out := make([]*models.Document, 0, len(r.docs))
	for _, d := range r.docs {
		cp := *d
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeDocumentRepo) ListPending(ctx context.Context) ([]*models.Document, error) {
	out := make([]*models.Document, 0)
	for _, d := range r.docs {
		if d.Status == models.DocumentStatusPending {
			cp := *d
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeDocumentRepo) Save(ctx context.Context, doc *models.Document) error {
	cp := *doc
	r.docs[doc.ID] = &cp
	return nil
}

func (r *fakeDocumentRepo) UpdateFromStatus(ctx context.Context, doc *models.Document, fromStatus string) (bool, error) {
	stored, ok := r.docs[doc.ID]
	if !ok || stored.Status != fromStatus {
		return false, nil
	}
	cp := *doc
	r.docs[doc.ID] = &cp
	return true, nil
}

func (r *fakeDocumentRepo) Delete(ctx context.Context, id uint) error {
	delete(r.docs, id)
	return nil
}

func (r *fakeDocumentRepo) ExpireOverdue(ctx context.Context, now time.Time) (int64, error) {
	var n int64
	for _, d := range r.docs {
		if d.Status == models.DocumentStatusVerified && d.ExpiryDate != nil && d.ExpiryDate.Before(now) {
			d.Status = models.DocumentStatusExpired
			n++
		}
	}
	return n, nil
}

func (r *fakeDocumentRepo) ListCategories(ctx context.Context) ([]*models.DocumentCategory, error) {
	out := make([]*models.DocumentCategory, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeDocumentRepo) GetCategory(ctx context.Context, id uint) (*models.DocumentCategory, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return c, nil
}

// ------------------------------------------------------------
// Notifications
// ------------------------------------------------------------

type fakeNotificationRepo struct {
	notifications map[uint]*models.SMSNotification
	templates     map[string]*models.NotificationTemplate
	nextID        uint
}

func newFakeNotificationRepo() *fakeNotificationRepo {
	return &fakeNotificationRepo{
		notifications: make(map[uint]*models.SMSNotification),
		templates:     make(map[string]*models.NotificationTemplate),
		nextID:        1,
	}
}

func (r *fakeNotificationRepo) Create(ctx context.Context, n *models.SMSNotification) error {
	n.ID = r.nextID
	r.nextID++
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) Update(ctx context.Context, n *models.SMSNotification) error {
	cp := *n
	r.notifications[n.ID] = &cp
	return nil
}

func (r *fakeNotificationRepo) ListByRecipient(ctx context.Context, userID uint) ([]*models.SMSNotification, error) {
	out := make([]*models.SMSNotification, 0)
	for _, n := range r.notifications {
		if n.RecipientID == userID {
			cp := *n
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeNotificationRepo) List(ctx context.Context, offset, limit int) ([]*models.SMSNotification, int64, error) {
	out := make([]*models.SMSNotification, 0, len(r.notifications))
	for _, n := range r.notifications {
		cp := *n
		out = append(out, &cp)
	}
	return out, int64(len(out)), nil
}

func (r *fakeNotificationRepo) GetTemplateByName(ctx context.Context, name string) (*models.NotificationTemplate, error) {
	t, ok := r.templates[name]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return t, nil
}

func (r *fakeNotificationRepo) ListTemplates(ctx context.Context) ([]*models.NotificationTemplate, error) {
	out := make([]*models.NotificationTemplate, 0, len(r.templates))
	for _, t := range r.templates {
		out = append(out, t)
	}
	return out, nil
}

func (r *fakeNotificationRepo) SaveTemplate(ctx context.Context, t *models.NotificationTemplate) error {
	r.templates[t.Name] = t
	return nil
}

// ------------------------------------------------------------
// Notifier spies
// ------------------------------------------------------------

type spyNotifier struct {
	approved         []uint
	rejected         []uint
	verified         []uint
	rejectedPayments []uint
}

func (s *spyNotifier) ApplicationApproved(app *models.Application) {
	s.approved = append(s.approved, app.ID)
}

func (s *spyNotifier) ApplicationRejected(app *models.Application, reason string) {
	s.rejected = append(s.rejected, app.ID)
}

func (s *spyNotifier) ContributionVerified(c *models.Contribution) {
	s.verified = append(s.verified, c.ID)
}

func (s *spyNotifier) ContributionRejected(c *models.Contribution, reason string) {
	s.rejectedPayments = append(s.rejectedPayments, c.ID)
}
