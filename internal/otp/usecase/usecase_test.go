package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shandysiswandi/gotp/internal/otp/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/goroutine"
	"github.com/shandysiswandi/gotp/internal/pkg/hash"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqUID struct{ next atomic.Int64 }

func (u *seqUID) Generate() int64 {
	return u.next.Add(1)
}

type seqGenerator struct{ next atomic.Int64 }

func (g *seqGenerator) Generate(length int) (string, error) {
	return fmt.Sprintf("%0*d", length, g.next.Add(1)), nil
}

type fakeRepo struct {
	policy    *entity.Policy
	policyErr error
	upserted  []entity.Policy

	recipient    *entity.Recipient
	recipientErr error

	existsHashes map[string]bool

	created   []entity.Code
	createErr error

	activeCode    *entity.Code
	activeCodeErr error

	latestCode    *entity.Code
	latestCodeErr error

	codeByID    *entity.Code
	codeByIDErr error

	listCodes  []entity.Code
	listTotal  int64
	listFilter entity.CodeListFilterData

	markUsedSwapped    bool
	markUsedErr        error
	markUsedIDs        []int64
	markExpiredSwapped bool
	markExpiredIDs     []int64

	dueCodes []entity.Code

	deletedIDs []int64
}

func (r *fakeRepo) GetPolicy(context.Context) (*entity.Policy, error) {
	if r.policyErr != nil {
		return nil, r.policyErr
	}
	return r.policy, nil
}

func (r *fakeRepo) UpsertPolicy(_ context.Context, p entity.Policy) error {
	r.upserted = append(r.upserted, p)
	return nil
}

func (r *fakeRepo) CreateCode(_ context.Context, c entity.Code) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, c)
	return nil
}

func (r *fakeRepo) GetActiveCode(context.Context, int64, string) (*entity.Code, error) {
	if r.activeCodeErr != nil {
		return nil, r.activeCodeErr
	}
	return r.activeCode, nil
}

func (r *fakeRepo) GetLatestCode(context.Context, int64, string) (*entity.Code, error) {
	if r.latestCodeErr != nil {
		return nil, r.latestCodeErr
	}
	return r.latestCode, nil
}

func (r *fakeRepo) GetCodeByID(context.Context, int64) (*entity.Code, error) {
	if r.codeByIDErr != nil {
		return nil, r.codeByIDErr
	}
	return r.codeByID, nil
}

func (r *fakeRepo) GetCodeList(_ context.Context, filter entity.CodeListFilterData) ([]entity.Code, int64, error) {
	r.listFilter = filter
	return r.listCodes, r.listTotal, nil
}

func (r *fakeRepo) ExistsActiveCodeHash(_ context.Context, _ int64, codeHash string) (bool, error) {
	return r.existsHashes[codeHash], nil
}

func (r *fakeRepo) MarkCodeUsed(_ context.Context, id int64, _ time.Time) (bool, error) {
	if r.markUsedErr != nil {
		return false, r.markUsedErr
	}
	r.markUsedIDs = append(r.markUsedIDs, id)
	return r.markUsedSwapped, nil
}

func (r *fakeRepo) MarkCodeExpired(_ context.Context, id int64) (bool, error) {
	r.markExpiredIDs = append(r.markExpiredIDs, id)
	return r.markExpiredSwapped, nil
}

func (r *fakeRepo) ExpireDueCodes(context.Context, time.Time) ([]entity.Code, error) {
	return r.dueCodes, nil
}

func (r *fakeRepo) DeleteCode(_ context.Context, id int64) error {
	r.deletedIDs = append(r.deletedIDs, id)
	return nil
}

func (r *fakeRepo) GetRecipient(context.Context, int64) (*entity.Recipient, error) {
	if r.recipientErr != nil {
		return nil, r.recipientErr
	}
	return r.recipient, nil
}

// activeSetRepo admits at most one ACTIVE code per (user, operation), the
// way the partial unique index does, so racing creates can be exercised.
type activeSetRepo struct {
	fakeRepo

	mu     sync.Mutex
	active map[string]struct{}
}

func (r *activeSetRepo) CreateCode(_ context.Context, c entity.Code) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := fmt.Sprintf("%d/%s", c.UserID, c.OperationID)
	if _, ok := r.active[key]; ok {
		return goerror.ErrConflict
	}
	if r.active == nil {
		r.active = map[string]struct{}{}
	}
	r.active[key] = struct{}{}
	r.created = append(r.created, c)
	return nil
}

type fakeDispatcher struct {
	out *DeliveryOutput
	err error

	inputs []DeliveryInput
}

func (d *fakeDispatcher) Dispatch(_ context.Context, _ []entity.Channel, in DeliveryInput) (*DeliveryOutput, error) {
	d.inputs = append(d.inputs, in)
	if d.err != nil {
		return nil, d.err
	}
	return d.out, nil
}

type fakeMessaging struct {
	mu      sync.Mutex
	issued  []CodeIssuedEvent
	used    []CodeUsedEvent
	expired []CodeExpiredEvent
}

func (m *fakeMessaging) PublishCodeIssued(_ context.Context, msg CodeIssuedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.issued = append(m.issued, msg)
	return nil
}

func (m *fakeMessaging) PublishCodeUsed(_ context.Context, msg CodeUsedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.used = append(m.used, msg)
	return nil
}

func (m *fakeMessaging) PublishCodeExpired(_ context.Context, msg CodeExpiredEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.expired = append(m.expired, msg)
	return nil
}

type fakeAudit struct {
	mu      sync.Mutex
	entries []AuditEntry
}

func (a *fakeAudit) Record(_ context.Context, e AuditEntry) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.entries = append(a.entries, e)
	return nil
}

type fixture struct {
	uc        *Usecase
	repo      repoDB
	dsp       *fakeDispatcher
	msg       *fakeMessaging
	audit     *fakeAudit
	goroutine *goroutine.Manager
	hmac      hash.Hash
}

// wait flushes the async event/audit goroutines.
func (f *fixture) wait(t *testing.T) {
	t.Helper()
	if err := f.goroutine.Wait(); err != nil {
		t.Fatalf("expected no goroutine errors, got %v", err)
	}
}

func newFixture(t *testing.T, repo repoDB, dsp *fakeDispatcher) *fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("expected validator to build, got %v", err)
	}

	msg := &fakeMessaging{}
	aud := &fakeAudit{}
	mgr := goroutine.NewManager(10)
	hm := hash.NewHMACSHA256("test-secret")

	uc := New(Dependency{
		RepoDB:        repo,
		RepoMessaging: msg,
		Dispatcher:    dsp,
		Audit:         aud,
		Validator:     v,
		HMAC:          hm,
		UID:           &seqUID{},
		Generator:     &seqGenerator{},
		Clock:         fixedClock{t: testNow},
		Instrument:    instrument.NewNoop(),
		Goroutine:     mgr,
	})

	return &fixture{uc: uc, repo: repo, dsp: dsp, msg: msg, audit: aud, goroutine: mgr, hmac: hm}
}

func assertCode(t *testing.T, err error, want goerror.Code) {
	t.Helper()

	var gerr *goerror.Error
	if !errors.As(err, &gerr) {
		t.Fatalf("expected goerror, got %v", err)
	}
	if gerr.Code() != want {
		t.Fatalf("expected code %s, got %s (%v)", want.String(), gerr.Code().String(), err)
	}
}

func defaultPolicy() *entity.Policy {
	return &entity.Policy{TTL: 5 * time.Minute, CodeLength: 6, UpdatedAt: testNow}
}

func defaultRecipient() *entity.Recipient {
	return &entity.Recipient{UserID: 7, Email: "user@example.com", FullName: "Test User"}
}

func TestCreate(t *testing.T) {
	input := CreateInput{UserID: 7, OperationID: "payment.confirm", Channels: []string{"email", "sms"}}

	t.Run("Success", func(t *testing.T) {
		repo := &fakeRepo{policy: defaultPolicy(), recipient: defaultRecipient()}
		dsp := &fakeDispatcher{out: &DeliveryOutput{Delivered: []entity.Channel{entity.ChannelEmail, entity.ChannelSMS}}}
		f := newFixture(t, repo, dsp)

		out, err := f.uc.Create(context.Background(), input)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		f.wait(t)

		if out.ExpiresAt != testNow.Add(5*time.Minute) {
			t.Fatalf("expected expiry five minutes out, got %v", out.ExpiresAt)
		}
		if len(repo.created) != 1 {
			t.Fatalf("expected one stored code, got %d", len(repo.created))
		}

		stored := repo.created[0]
		if stored.Status != entity.CodeStatusActive {
			t.Fatalf("expected stored code to be active, got %v", stored.Status)
		}
		if len(dsp.inputs) != 1 {
			t.Fatalf("expected one dispatch, got %d", len(dsp.inputs))
		}
		if !f.hmac.Verify(stored.CodeHash, dsp.inputs[0].Code) {
			t.Fatalf("expected stored hash to match the dispatched code")
		}
		if len(f.msg.issued) != 1 || f.msg.issued[0].CodeID != stored.ID {
			t.Fatalf("expected an issued event for code %d", stored.ID)
		}
		if len(f.audit.entries) != 1 || f.audit.entries[0].Event != "issued" {
			t.Fatalf("expected an issued audit entry, got %+v", f.audit.entries)
		}
	})

	t.Run("RedrawsOnHashCollision", func(t *testing.T) {
		hm := hash.NewHMACSHA256("test-secret")
		firstHash, _ := hm.Hash("000001")

		repo := &fakeRepo{
			policy:       defaultPolicy(),
			recipient:    defaultRecipient(),
			existsHashes: map[string]bool{string(firstHash): true},
		}
		dsp := &fakeDispatcher{out: &DeliveryOutput{Delivered: []entity.Channel{entity.ChannelEmail}}}
		f := newFixture(t, repo, dsp)

		_, err := f.uc.Create(context.Background(), input)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		f.wait(t)

		// The first draw collides with an active code, so the second draw
		// must be the one delivered.
		if dsp.inputs[0].Code != "000002" {
			t.Fatalf("expected the second draw to be delivered, got %q", dsp.inputs[0].Code)
		}
	})

	t.Run("DuplicateActiveOperation", func(t *testing.T) {
		repo := &fakeRepo{policy: defaultPolicy(), recipient: defaultRecipient(), createErr: goerror.ErrConflict}
		f := newFixture(t, repo, &fakeDispatcher{})

		_, err := f.uc.Create(context.Background(), input)
		assertCode(t, err, goerror.CodeConflict)
	})

	t.Run("ConcurrentCreatesAdmitExactlyOne", func(t *testing.T) {
		repo := &activeSetRepo{fakeRepo: fakeRepo{policy: defaultPolicy(), recipient: defaultRecipient()}}
		dsp := &fakeDispatcher{out: &DeliveryOutput{Delivered: []entity.Channel{entity.ChannelEmail}}}
		f := newFixture(t, repo, dsp)

		errs := make([]error, 2)
		var wg sync.WaitGroup
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				_, errs[i] = f.uc.Create(context.Background(), input)
			}(i)
		}
		wg.Wait()
		f.wait(t)

		var ok, conflict int
		for _, err := range errs {
			switch {
			case err == nil:
				ok++
			default:
				assertCode(t, err, goerror.CodeConflict)
				conflict++
			}
		}
		if ok != 1 || conflict != 1 {
			t.Fatalf("expected one winner and one conflict, got %d/%d (%v)", ok, conflict, errs)
		}
		if len(repo.created) != 1 {
			t.Fatalf("expected one stored code, got %d", len(repo.created))
		}
	})

	t.Run("AllChannelsFailRollsBack", func(t *testing.T) {
		repo := &fakeRepo{policy: defaultPolicy(), recipient: defaultRecipient()}
		dsp := &fakeDispatcher{err: errors.New("every channel failed")}
		f := newFixture(t, repo, dsp)

		_, err := f.uc.Create(context.Background(), input)
		assertCode(t, err, goerror.CodeInternal)
		f.wait(t)

		if len(repo.created) != 1 {
			t.Fatalf("expected the code to be stored before dispatch, got %d", len(repo.created))
		}
		if len(repo.deletedIDs) != 1 || repo.deletedIDs[0] != repo.created[0].ID {
			t.Fatalf("expected the undeliverable code to be deleted, got %v", repo.deletedIDs)
		}
		if len(f.msg.issued) != 0 {
			t.Fatalf("expected no issued event after rollback")
		}
	})

	t.Run("PolicyNotConfigured", func(t *testing.T) {
		repo := &fakeRepo{policyErr: goerror.ErrNotFound}
		f := newFixture(t, repo, &fakeDispatcher{})

		_, err := f.uc.Create(context.Background(), input)
		assertCode(t, err, goerror.CodeInternal)
	})

	t.Run("RecipientNotFound", func(t *testing.T) {
		repo := &fakeRepo{policy: defaultPolicy(), recipientErr: goerror.ErrNotFound}
		f := newFixture(t, repo, &fakeDispatcher{})

		_, err := f.uc.Create(context.Background(), input)
		assertCode(t, err, goerror.CodeNotFound)
	})

	t.Run("UnknownChannelsOnly", func(t *testing.T) {
		repo := &fakeRepo{policy: defaultPolicy(), recipient: defaultRecipient()}
		f := newFixture(t, repo, &fakeDispatcher{})

		_, err := f.uc.Create(context.Background(), CreateInput{
			UserID:      7,
			OperationID: "login",
			Channels:    []string{"fax"},
		})
		assertCode(t, err, goerror.CodeInvalidInput)
	})

	t.Run("InvalidOperationID", func(t *testing.T) {
		f := newFixture(t, &fakeRepo{}, &fakeDispatcher{})

		_, err := f.uc.Create(context.Background(), CreateInput{
			UserID:      7,
			OperationID: "-starts-with-dash",
			Channels:    []string{"email"},
		})
		assertCode(t, err, goerror.CodeInvalidInput)
	})
}

func TestActivate(t *testing.T) {
	hm := hash.NewHMACSHA256("test-secret")
	codeHash, _ := hm.Hash("123456")

	activeCode := func() *entity.Code {
		return &entity.Code{
			ID:          42,
			UserID:      7,
			OperationID: "login",
			CodeHash:    string(codeHash),
			Status:      entity.CodeStatusActive,
			CreatedAt:   testNow.Add(-time.Minute),
			ExpiresAt:   testNow.Add(time.Minute),
		}
	}
	input := ActivateInput{UserID: 7, OperationID: "login", Code: "123456"}

	t.Run("Success", func(t *testing.T) {
		repo := &fakeRepo{activeCode: activeCode(), markUsedSwapped: true}
		f := newFixture(t, repo, &fakeDispatcher{})

		out, err := f.uc.Activate(context.Background(), input)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		f.wait(t)

		if out.CodeID != 42 || !out.UsedAt.Equal(testNow) {
			t.Fatalf("expected code 42 used at %v, got %+v", testNow, out)
		}
		if len(f.msg.used) != 1 || f.msg.used[0].CodeID != 42 {
			t.Fatalf("expected a used event for code 42")
		}
		if len(f.audit.entries) != 1 || f.audit.entries[0].Event != "used" {
			t.Fatalf("expected a used audit entry, got %+v", f.audit.entries)
		}
	})

	t.Run("NoActiveCode", func(t *testing.T) {
		repo := &fakeRepo{activeCodeErr: goerror.ErrNotFound}
		f := newFixture(t, repo, &fakeDispatcher{})

		_, err := f.uc.Activate(context.Background(), input)
		assertCode(t, err, goerror.CodeNotFound)
	})

	t.Run("MismatchDoesNotConsume", func(t *testing.T) {
		repo := &fakeRepo{activeCode: activeCode(), markUsedSwapped: true}
		f := newFixture(t, repo, &fakeDispatcher{})

		_, err := f.uc.Activate(context.Background(), ActivateInput{
			UserID:      7,
			OperationID: "login",
			Code:        "654321",
		})
		assertCode(t, err, goerror.CodeInvalidInput)

		if len(repo.markUsedIDs) != 0 {
			t.Fatalf("expected a mismatching code to leave the stored code untouched")
		}
	})

	t.Run("LapsedCodeIsRetiredLazily", func(t *testing.T) {
		lapsed := activeCode()
		lapsed.ExpiresAt = testNow.Add(-time.Second)

		repo := &fakeRepo{activeCode: lapsed, markExpiredSwapped: true}
		f := newFixture(t, repo, &fakeDispatcher{})

		_, err := f.uc.Activate(context.Background(), input)
		assertCode(t, err, goerror.CodeNotFound)
		f.wait(t)

		if len(repo.markExpiredIDs) != 1 || repo.markExpiredIDs[0] != 42 {
			t.Fatalf("expected the lapsed code to be retired, got %v", repo.markExpiredIDs)
		}
		if len(f.msg.expired) != 1 || f.msg.expired[0].CodeID != 42 {
			t.Fatalf("expected an expired event for code 42")
		}
	})

	t.Run("LosesRaceAgainstConcurrentTransition", func(t *testing.T) {
		repo := &fakeRepo{activeCode: activeCode(), markUsedSwapped: false}
		f := newFixture(t, repo, &fakeDispatcher{})

		_, err := f.uc.Activate(context.Background(), input)
		assertCode(t, err, goerror.CodeNotFound)

		if len(f.msg.used) != 0 {
			t.Fatalf("expected no used event when the swap is lost")
		}
	})
}

func TestStatus(t *testing.T) {
	t.Run("ActiveButLapsedReportsExpired", func(t *testing.T) {
		repo := &fakeRepo{latestCode: &entity.Code{
			ID:        9,
			Status:    entity.CodeStatusActive,
			ExpiresAt: testNow.Add(-time.Second),
		}}
		f := newFixture(t, repo, &fakeDispatcher{})

		out, err := f.uc.Status(context.Background(), StatusInput{UserID: 7, OperationID: "login"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Status != entity.CodeStatusExpired {
			t.Fatalf("expected lapsed code reported as expired, got %v", out.Status)
		}

		// Reporting must not write; the sweep owns the transition.
		if len(repo.markExpiredIDs) != 0 {
			t.Fatalf("expected status to be read-only, got writes %v", repo.markExpiredIDs)
		}
	})

	t.Run("NoCode", func(t *testing.T) {
		repo := &fakeRepo{latestCodeErr: goerror.ErrNotFound}
		f := newFixture(t, repo, &fakeDispatcher{})

		_, err := f.uc.Status(context.Background(), StatusInput{UserID: 7, OperationID: "login"})
		assertCode(t, err, goerror.CodeNotFound)
	})

	t.Run("AdminResolvesByOperationAlone", func(t *testing.T) {
		repo := &fakeRepo{latestCode: &entity.Code{
			ID:        11,
			UserID:    42,
			Status:    entity.CodeStatusActive,
			ExpiresAt: testNow.Add(time.Minute),
		}}
		f := newFixture(t, repo, &fakeDispatcher{})

		out, err := f.uc.Status(context.Background(), StatusInput{IsAdmin: true, OperationID: "login"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.CodeID != 11 {
			t.Fatalf("expected code 11, got %d", out.CodeID)
		}
	})

	t.Run("MissingUserRejectedForNonAdmin", func(t *testing.T) {
		f := newFixture(t, &fakeRepo{}, &fakeDispatcher{})

		_, err := f.uc.Status(context.Background(), StatusInput{OperationID: "login"})
		assertCode(t, err, goerror.CodeInvalidInput)
	})
}

func TestSweep(t *testing.T) {
	t.Run("PublishesPerRetiredCode", func(t *testing.T) {
		repo := &fakeRepo{dueCodes: []entity.Code{
			{ID: 1, UserID: 7, OperationID: "login"},
			{ID: 2, UserID: 8, OperationID: "payment.confirm"},
		}}
		f := newFixture(t, repo, &fakeDispatcher{})

		out, err := f.uc.Sweep(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		f.wait(t)

		if out.Expired != 2 {
			t.Fatalf("expected 2 retired codes, got %d", out.Expired)
		}
		if len(f.msg.expired) != 2 {
			t.Fatalf("expected 2 expired events, got %d", len(f.msg.expired))
		}
	})

	t.Run("NothingDue", func(t *testing.T) {
		f := newFixture(t, &fakeRepo{}, &fakeDispatcher{})

		out, err := f.uc.Sweep(context.Background())
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Expired != 0 {
			t.Fatalf("expected no retired codes, got %d", out.Expired)
		}
	})
}

func TestDelete(t *testing.T) {
	stored := &entity.Code{ID: 42, UserID: 7}

	t.Run("OwnerDeletesOwnCode", func(t *testing.T) {
		repo := &fakeRepo{codeByID: stored}
		f := newFixture(t, repo, &fakeDispatcher{})

		if err := f.uc.Delete(context.Background(), DeleteInput{CodeID: 42, ActorID: 7}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(repo.deletedIDs) != 1 || repo.deletedIDs[0] != 42 {
			t.Fatalf("expected code 42 deleted, got %v", repo.deletedIDs)
		}
	})

	t.Run("NonOwnerForbidden", func(t *testing.T) {
		repo := &fakeRepo{codeByID: stored}
		f := newFixture(t, repo, &fakeDispatcher{})

		err := f.uc.Delete(context.Background(), DeleteInput{CodeID: 42, ActorID: 99})
		assertCode(t, err, goerror.CodeForbidden)
	})

	t.Run("AdminDeletesAnyCode", func(t *testing.T) {
		repo := &fakeRepo{codeByID: stored}
		f := newFixture(t, repo, &fakeDispatcher{})

		if err := f.uc.Delete(context.Background(), DeleteInput{CodeID: 42, ActorID: 99, IsAdmin: true}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := &fakeRepo{codeByIDErr: goerror.ErrNotFound}
		f := newFixture(t, repo, &fakeDispatcher{})

		err := f.uc.Delete(context.Background(), DeleteInput{CodeID: 42, ActorID: 7})
		assertCode(t, err, goerror.CodeNotFound)
	})
}

func TestPolicy(t *testing.T) {
	t.Run("SetWithinBounds", func(t *testing.T) {
		repo := &fakeRepo{}
		f := newFixture(t, repo, &fakeDispatcher{})

		out, err := f.uc.PolicySet(context.Background(), PolicySetInput{TTLMillis: 60_000, CodeLength: 8})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.TTL != time.Minute || out.CodeLength != 8 {
			t.Fatalf("expected stored policy returned, got %+v", out)
		}
		if len(repo.upserted) != 1 {
			t.Fatalf("expected one upsert, got %d", len(repo.upserted))
		}
	})

	t.Run("SetOutOfBounds", func(t *testing.T) {
		cases := []PolicySetInput{
			{TTLMillis: 9_999, CodeLength: 6},      // just below 10s
			{TTLMillis: 86_400_001, CodeLength: 6}, // just above 24h
			{TTLMillis: 60_000, CodeLength: 4},
			{TTLMillis: 60_000, CodeLength: 21},
		}

		for _, in := range cases {
			repo := &fakeRepo{}
			f := newFixture(t, repo, &fakeDispatcher{})

			_, err := f.uc.PolicySet(context.Background(), in)
			assertCode(t, err, goerror.CodeInvalidInput)
			if len(repo.upserted) != 0 {
				t.Fatalf("expected no upsert for %+v", in)
			}
		}
	})

	t.Run("GetNotConfigured", func(t *testing.T) {
		repo := &fakeRepo{policyErr: goerror.ErrNotFound}
		f := newFixture(t, repo, &fakeDispatcher{})

		_, err := f.uc.PolicyGet(context.Background())
		assertCode(t, err, goerror.CodeInternal)
	})
}

func TestList(t *testing.T) {
	t.Run("DefaultsPageAndLimit", func(t *testing.T) {
		repo := &fakeRepo{listCodes: []entity.Code{{ID: 1}}, listTotal: 1}
		f := newFixture(t, repo, &fakeDispatcher{})

		out, err := f.uc.List(context.Background(), ListInput{UserID: 7, Limit: 1000})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Page != 1 || out.Limit != 10 {
			t.Fatalf("expected page 1 limit 10, got page %d limit %d", out.Page, out.Limit)
		}
		if out.Total != 1 || len(out.Codes) != 1 {
			t.Fatalf("expected one code, got %+v", out)
		}
	})

	t.Run("AdminListsAcrossUsers", func(t *testing.T) {
		repo := &fakeRepo{listCodes: []entity.Code{{ID: 1, UserID: 7}, {ID: 2, UserID: 8}}, listTotal: 2}
		f := newFixture(t, repo, &fakeDispatcher{})

		out, err := f.uc.List(context.Background(), ListInput{IsAdmin: true, Statuses: []string{"1"}})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.Total != 2 || len(out.Codes) != 2 {
			t.Fatalf("expected both users' codes, got %+v", out)
		}
		if repo.listFilter.UserID != 0 {
			t.Fatalf("expected the query not to be pinned to a user, got %d", repo.listFilter.UserID)
		}
	})

	t.Run("MissingUserRejectedForNonAdmin", func(t *testing.T) {
		f := newFixture(t, &fakeRepo{}, &fakeDispatcher{})

		_, err := f.uc.List(context.Background(), ListInput{})
		assertCode(t, err, goerror.CodeInvalidInput)
	})
}
