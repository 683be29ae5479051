package authsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"libraryapi/model"
	userrepo "libraryapi/repository/user"
	"libraryapi/util/hash"
	jwtutil "libraryapi/util/jwt"
)

var (
	ErrEmailTaken   = errors.New("email already registered")
	ErrBadInput     = errors.New("bad input")
	ErrInvalidCreds = errors.New("invalid credentials")
	ErrBadRefresh   = errors.New("invalid refresh token")
	ErrNotFound     = errors.New("user not found")
)

// TokenPair is what login hands back.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

type Config struct {
	Secret          string
	AccessTTLHours  int
	RefreshTTLHours int
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, *TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	Me(ctx context.Context, userID int64) (*model.User, error)
}

type service struct {
	ur  userrepo.Repo
	cfg Config
}

func New(ur userrepo.Repo, cfg Config) Service { return &service{ur: ur, cfg: cfg} }

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, error) {
	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	u := &model.User{
		Email:        req.Email,
		PasswordHash: hashed,
	}
	if err := s.ur.Create(ctx, u); err != nil {
		if derr := mapDuplicateErr(err); derr != nil {
			return nil, derr
		}
		return nil, err
	}
	return u, nil
}

func mapDuplicateErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		cn := strings.ToLower(pgErr.ConstraintName)
		msg := strings.ToLower(pgErr.Message)

		if strings.Contains(cn, "users_email") || strings.Contains(msg, "email") {
			return ErrEmailTaken
		}
		return ErrBadInput
	}
	return nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, *TokenPair, error) {
	u, err := s.ur.ByEmail(ctx, req.Email)
	if err != nil {
		return nil, nil, ErrInvalidCreds
	}
	if !hash.Check(u.PasswordHash, req.Password) {
		return nil, nil, ErrInvalidCreds
	}

	access, err := jwtutil.Issue(s.cfg.Secret, u.ID, u.Email, u.IsStaff, jwtutil.TypeAccess, s.cfg.AccessTTLHours)
	if err != nil {
		return nil, nil, err
	}
	refresh, err := jwtutil.Issue(s.cfg.Secret, u.ID, u.Email, u.IsStaff, jwtutil.TypeRefresh, s.cfg.RefreshTTLHours)
	if err != nil {
		return nil, nil, err
	}
	return u, &TokenPair{Access: access, Refresh: refresh}, nil
}

func (s *service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	uid, email, staff, err := jwtutil.ParseRefresh(refreshToken, s.cfg.Secret)
	if err != nil {
		return "", ErrBadRefresh
	}
	return jwtutil.Issue(s.cfg.Secret, uid, email, staff, jwtutil.TypeAccess, s.cfg.AccessTTLHours)
}

func (s *service) Me(ctx context.Context, userID int64) (*model.User, error) {
	u, err := s.ur.ByID(ctx, userID)
	if err != nil {
		return nil, ErrNotFound
	}
	return u, nil
}
