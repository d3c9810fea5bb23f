package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/latienda/backend/internal/blacklist"
	"github.com/latienda/backend/internal/config"
	"github.com/latienda/backend/internal/constants"
	inErrors "github.com/latienda/backend/internal/errors"
	"github.com/latienda/backend/internal/log"
	inOtel "github.com/latienda/backend/internal/otel"
	"github.com/latienda/backend/internal/repository"
	"github.com/latienda/backend/user/otel"
	"github.com/latienda/backend/user/pkg/request"
	"github.com/latienda/backend/user/pkg/response"
)

const (
	pgErrUniqueViolation = "23505"

	tokenValidity = 30 * time.Minute
)

type UserService struct {
	pool      *pgxpool.Pool
	queries   *repository.Queries
	blacklist *blacklist.Store
	config    config.Application
}

func NewUserService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	blacklist *blacklist.Store,
	config config.Application,
) *UserService {
	return &UserService{pool: pool, queries: queries, blacklist: blacklist, config: config}
}

func (s *UserService) Register(
	c context.Context,
	param request.Register,
) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService Register")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserService Register").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "hashing password").Logger()
	logger.Trace().Msg("hashing password")
	hashed, err := bcrypt.GenerateFromPassword([]byte(param.Password), bcrypt.DefaultCost)
	if err != nil {
		err = fmt.Errorf("failed hashing password with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Debug().Msg("hashed password")

	logger = logger.With().Str(log.KeyProcess, "inserting user").Logger()
	logger.Trace().Msg("inserting user")
	user, err := s.queries.InsertUser(c, repository.InsertUserParams{
		Username: param.Username,
		Email:    param.Email,
		Password: string(hashed),
	})
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation {
			err = fmt.Errorf("failed inserting user with error=%w", inErrors.ErrUserExists)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.User{}, inErrors.ErrUserExists
		}
		err = fmt.Errorf("failed inserting user with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()
	logger.Info().Msg("inserted user")

	return user.Response(), nil
}

func (s *UserService) Login(c context.Context, param request.Login) (response.Login, error) {
	c, span := otel.Tracer.Start(c, "UserService Login")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserService Login").
		Str(log.KeyEmail, param.Email).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding user by email").Logger()
	logger.Trace().Msg("finding user by email")
	user, err := s.queries.FindUserByEmail(c, param.Email)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding user by email with error=%w", inErrors.ErrUserNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Login{}, inErrors.ErrUserNotFound
		}
		err = fmt.Errorf("failed finding user by email with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger = logger.With().Str(log.KeyUserID, user.ID.String()).Logger()
	logger.Debug().Msg("found user by email")

	logger = logger.With().Str(log.KeyProcess, "verifying password").Logger()
	err = bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(param.Password))
	if err != nil {
		err = fmt.Errorf("failed verifying password with error=%w", inErrors.ErrPasswordMismatch)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, inErrors.ErrPasswordMismatch
	}
	logger.Debug().Msg("verified password")

	logger = logger.With().Str(log.KeyProcess, "signing token").Logger()
	now := time.Now()
	expiresAt := now.Add(tokenValidity)
	token := jwt.NewWithClaims(
		jwt.SigningMethodHS256,
		jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{constants.AudienceUser},
			Issuer:    constants.AppTienda,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	)
	signedToken, err := token.SignedString([]byte(s.config.SecretKey))
	if err != nil {
		err = fmt.Errorf("failed signing token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Login{}, err
	}
	logger.Info().Msg("signed token")

	return response.Login{
		Token:     signedToken,
		ExpiredAt: expiresAt,
		User:      user.Response(),
	}, nil
}

// Logout blacklists the presented token for its remaining validity, so it can
// no longer pass the auth middleware even though its signature stays valid.
func (s *UserService) Logout(c context.Context, token *jwt.Token) error {
	c, span := otel.Tracer.Start(c, "UserService Logout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserService Logout").
		Str(log.KeyProcess, "blacklisting token").
		Logger()

	expiresAt, err := token.Claims.GetExpirationTime()
	if err != nil || expiresAt == nil {
		err = fmt.Errorf("failed getting token expiration with error=%w", inErrors.ErrTokenInvalid)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return inErrors.ErrTokenInvalid
	}

	logger.Trace().Msg("blacklisting token")
	err = s.blacklist.Put(c, token.Raw, expiresAt.Time)
	if err != nil {
		err = fmt.Errorf("failed blacklisting token with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger.Info().Msg("blacklisted token")

	return nil
}

func (s *UserService) FindUserById(c context.Context, id uuid.UUID) (response.User, error) {
	c, span := otel.Tracer.Start(c, "UserService FindUserById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "UserService FindUserById").
		Str(log.KeyUserID, id.String()).
		Str(log.KeyProcess, "finding user by id").
		Logger()

	logger.Trace().Msg("finding user by id")
	user, err := s.queries.FindUserById(c, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = fmt.Errorf("failed finding user by id with error=%w", inErrors.ErrUserNotFound)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.User{}, inErrors.ErrUserNotFound
		}
		err = fmt.Errorf("failed finding user by id with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.User{}, err
	}
	logger.Info().Msg("found user by id")

	return user.Response(), nil
}
