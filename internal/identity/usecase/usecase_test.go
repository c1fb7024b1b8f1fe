package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shandysiswandi/gotp/internal/identity/entity"
	"github.com/shandysiswandi/gotp/internal/pkg/goerror"
	"github.com/shandysiswandi/gotp/internal/pkg/hash"
	"github.com/shandysiswandi/gotp/internal/pkg/instrument"
	"github.com/shandysiswandi/gotp/internal/pkg/jwt"
	"github.com/shandysiswandi/gotp/internal/pkg/validator"
	"github.com/shandysiswandi/gotp/internal/shared/constant"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type seqUID struct{ next int64 }

func (u *seqUID) Generate() int64 {
	u.next++
	return u.next
}

type stubJWT struct{ err error }

func (j stubJWT) Generate(uid int64, email, role string) (string, error) {
	if j.err != nil {
		return "", j.err
	}
	return fmt.Sprintf("token-%d-%s-%s", uid, email, role), nil
}

func (stubJWT) Verify(string) (jwt.Claims, error) {
	return jwt.Claims{}, jwt.ErrInvalidToken
}

type fakeRepo struct {
	createErr error
	created   []entity.User

	userByEmail    *entity.User
	userByEmailErr error

	userByID    *entity.User
	userByIDErr error

	passwordUpdates map[int64]string
	roleUpdates     map[int64]string
	profileUpdates  []entity.User
	deleted         []int64

	adminExists bool
}

func (r *fakeRepo) CreateUser(_ context.Context, u entity.User) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.created = append(r.created, u)
	return nil
}

func (r *fakeRepo) GetUserByEmail(context.Context, string) (*entity.User, error) {
	if r.userByEmailErr != nil {
		return nil, r.userByEmailErr
	}
	return r.userByEmail, nil
}

func (r *fakeRepo) GetUserByID(context.Context, int64) (*entity.User, error) {
	if r.userByIDErr != nil {
		return nil, r.userByIDErr
	}
	return r.userByID, nil
}

func (r *fakeRepo) GetUserList(context.Context, entity.UserListFilterData) ([]entity.User, int64, error) {
	return nil, 0, nil
}

func (r *fakeRepo) ExistsAdmin(context.Context) (bool, error) {
	return r.adminExists, nil
}

func (r *fakeRepo) UpdateUserPassword(_ context.Context, id int64, passwordHash string) error {
	if r.passwordUpdates == nil {
		r.passwordUpdates = map[int64]string{}
	}
	r.passwordUpdates[id] = passwordHash
	return nil
}

func (r *fakeRepo) UpdateUserProfile(_ context.Context, u entity.User) error {
	r.profileUpdates = append(r.profileUpdates, u)
	return nil
}

func (r *fakeRepo) UpdateUserRole(_ context.Context, id int64, role string) error {
	if r.roleUpdates == nil {
		r.roleUpdates = map[int64]string{}
	}
	r.roleUpdates[id] = role
	return nil
}

func (r *fakeRepo) MarkUserDeleted(_ context.Context, id, _ int64) error {
	r.deleted = append(r.deleted, id)
	return nil
}

func newUsecase(t *testing.T, repo *fakeRepo) *Usecase {
	t.Helper()

	v, err := validator.NewV10Validator()
	if err != nil {
		t.Fatalf("expected validator to build, got %v", err)
	}

	return New(Dependency{
		RepoDB:     repo,
		Validator:  v,
		Bcrypt:     hash.NewBcrypt(4, ""),
		UID:        &seqUID{},
		Clock:      fixedClock{t: testNow},
		JWT:        stubJWT{},
		Instrument: instrument.NewNoop(),
	})
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

func TestSignUp(t *testing.T) {
	input := SignUpInput{
		Email:    "New.User@Example.com",
		Password: "Password123!",
		FullName: "New User",
	}

	t.Run("Success", func(t *testing.T) {
		repo := &fakeRepo{}
		uc := newUsecase(t, repo)

		out, err := uc.SignUp(context.Background(), input)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.AccessToken == "" {
			t.Fatalf("expected an access token")
		}

		if len(repo.created) != 1 {
			t.Fatalf("expected one created user, got %d", len(repo.created))
		}
		created := repo.created[0]
		if created.Email != "new.user@example.com" {
			t.Fatalf("expected lowercased email, got %q", created.Email)
		}
		if created.Role != constant.RoleUser {
			t.Fatalf("expected regular user role, got %q", created.Role)
		}
		if created.Password == input.Password {
			t.Fatalf("expected password to be hashed")
		}
	})

	t.Run("EmailAlreadyRegistered", func(t *testing.T) {
		repo := &fakeRepo{createErr: goerror.ErrConflict}
		uc := newUsecase(t, repo)

		_, err := uc.SignUp(context.Background(), input)
		assertCode(t, err, goerror.CodeConflict)
	})

	t.Run("WeakPassword", func(t *testing.T) {
		uc := newUsecase(t, &fakeRepo{})

		weak := input
		weak.Password = "short"

		_, err := uc.SignUp(context.Background(), weak)
		assertCode(t, err, goerror.CodeInvalidInput)
	})
}

func TestSignIn(t *testing.T) {
	bc := hash.NewBcrypt(4, "")
	passwordHash, _ := bc.Hash("Password123!")

	account := func() *entity.User {
		return &entity.User{
			ID:       7,
			Email:    "user@example.com",
			Role:     constant.RoleUser,
			Password: string(passwordHash),
			Status:   entity.UserStatusActive,
		}
	}

	t.Run("Success", func(t *testing.T) {
		repo := &fakeRepo{userByEmail: account()}
		uc := newUsecase(t, repo)

		out, err := uc.SignIn(context.Background(), SignInInput{Email: "user@example.com", Password: "Password123!"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if out.AccessToken == "" {
			t.Fatalf("expected an access token")
		}
	})

	t.Run("WrongPassword", func(t *testing.T) {
		repo := &fakeRepo{userByEmail: account()}
		uc := newUsecase(t, repo)

		_, err := uc.SignIn(context.Background(), SignInInput{Email: "user@example.com", Password: "WrongPass1!"})
		assertCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("UnknownEmail", func(t *testing.T) {
		repo := &fakeRepo{userByEmailErr: goerror.ErrNotFound}
		uc := newUsecase(t, repo)

		_, err := uc.SignIn(context.Background(), SignInInput{Email: "ghost@example.com", Password: "Password123!"})
		assertCode(t, err, goerror.CodeUnauthorized)
	})

	t.Run("BannedAccount", func(t *testing.T) {
		banned := account()
		banned.Status = entity.UserStatusBanned

		repo := &fakeRepo{userByEmail: banned}
		uc := newUsecase(t, repo)

		_, err := uc.SignIn(context.Background(), SignInInput{Email: "user@example.com", Password: "Password123!"})
		assertCode(t, err, goerror.CodeForbidden)
	})
}

func TestPasswordChange(t *testing.T) {
	bc := hash.NewBcrypt(4, "")
	passwordHash, _ := bc.Hash("OldPassword1!")

	account := &entity.User{ID: 7, Password: string(passwordHash)}

	t.Run("Success", func(t *testing.T) {
		repo := &fakeRepo{userByID: account}
		uc := newUsecase(t, repo)

		err := uc.PasswordChange(context.Background(), PasswordChangeInput{
			UserID:          7,
			CurrentPassword: "OldPassword1!",
			NewPassword:     "NewPassword1!",
		})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if repo.passwordUpdates[7] == "" {
			t.Fatalf("expected password to be updated")
		}
	})

	t.Run("CurrentPasswordMismatch", func(t *testing.T) {
		repo := &fakeRepo{userByID: account}
		uc := newUsecase(t, repo)

		err := uc.PasswordChange(context.Background(), PasswordChangeInput{
			UserID:          7,
			CurrentPassword: "WrongPassword1!",
			NewPassword:     "NewPassword1!",
		})
		assertCode(t, err, goerror.CodeUnauthorized)
	})
}

func TestUserGrantAdmin(t *testing.T) {
	t.Run("PromotesRegularUser", func(t *testing.T) {
		repo := &fakeRepo{userByID: &entity.User{ID: 7, Role: constant.RoleUser}}
		uc := newUsecase(t, repo)

		if err := uc.UserGrantAdmin(context.Background(), UserGrantAdminInput{ID: 7}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if repo.roleUpdates[7] != constant.RoleAdmin {
			t.Fatalf("expected role update to admin, got %v", repo.roleUpdates)
		}
	})

	t.Run("AlreadyAdminIsIdempotent", func(t *testing.T) {
		repo := &fakeRepo{userByID: &entity.User{ID: 7, Role: constant.RoleAdmin}}
		uc := newUsecase(t, repo)

		if err := uc.UserGrantAdmin(context.Background(), UserGrantAdminInput{ID: 7}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(repo.roleUpdates) != 0 {
			t.Fatalf("expected no role update, got %v", repo.roleUpdates)
		}
	})
}

func TestUserDelete(t *testing.T) {
	t.Run("SoftDeletes", func(t *testing.T) {
		repo := &fakeRepo{userByID: &entity.User{ID: 7}}
		uc := newUsecase(t, repo)

		if err := uc.UserDelete(context.Background(), UserDeleteInput{ID: 7, ActorID: 1}); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(repo.deleted) != 1 || repo.deleted[0] != 7 {
			t.Fatalf("expected user 7 marked deleted, got %v", repo.deleted)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		repo := &fakeRepo{userByIDErr: goerror.ErrNotFound}
		uc := newUsecase(t, repo)

		err := uc.UserDelete(context.Background(), UserDeleteInput{ID: 7, ActorID: 1})
		assertCode(t, err, goerror.CodeNotFound)
	})

	t.Run("SelfDeleteRejected", func(t *testing.T) {
		repo := &fakeRepo{userByID: &entity.User{ID: 7}}
		uc := newUsecase(t, repo)

		err := uc.UserDelete(context.Background(), UserDeleteInput{ID: 7, ActorID: 7})
		assertCode(t, err, goerror.CodeForbidden)
		if len(repo.deleted) != 0 {
			t.Fatalf("expected no deletion, got %v", repo.deleted)
		}
	})
}
