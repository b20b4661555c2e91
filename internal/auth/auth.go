package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"jobportal/internal/lib/jwt"
	"jobportal/internal/lib/logger/sl"
	"jobportal/internal/lib/password"
	"jobportal/internal/lib/random"
	"jobportal/internal/models"
	"jobportal/internal/storage"

	"github.com/google/uuid"
)

const (
	resetTokenBytes  = 32
	rollbackTimeout  = 5 * time.Second
	avatarKeyPrefix  = "avatars"
	coverKeyPrefix   = "covers"
	defaultUploadExt = ".bin"
)

type UserSaver interface {
	SaveUser(ctx context.Context, user models.User) error
	SetRefreshToken(ctx context.Context, userID, token string) error
	RotateRefreshToken(ctx context.Context, userID, oldToken, newToken string) error
	ClearRefreshToken(ctx context.Context, userID string) error
	UpdateLastLogin(ctx context.Context, userID string, at time.Time) error
	UpdatePassword(ctx context.Context, userID string, passHash []byte) error
	SetResetToken(ctx context.Context, userID, token string, expiry time.Time) error
	ClearResetToken(ctx context.Context, userID, token string) error
	ConsumeResetToken(ctx context.Context, token string, passHash []byte, now time.Time) (string, error)
}

type UserProvider interface {
	UserByIdentifier(ctx context.Context, identifier string, role models.Role) (models.User, error)
	UserByID(ctx context.Context, id string) (models.User, error)
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByResetToken(ctx context.Context, token string, now time.Time) (models.User, error)
}

// MessageSender dispatches mail jobs, either to the queue or over SMTP.
type MessageSender interface {
	SendMessage(ctx context.Context, msg models.Message) error
}

type UserCache interface {
	CacheUser(ctx context.Context, user models.PublicUser) error
	CachedUser(ctx context.Context, id string) (models.PublicUser, error)
	InvalidateUser(ctx context.Context, id string) error
}

type FileStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.ReadSeeker, size int64) (string, error)
	Delete(ctx context.Context, key string) error
}

type Auth struct {
	log         *slog.Logger
	usrSaver    UserSaver
	usrProvider UserProvider
	tokens      *jwt.Issuer
	sender      MessageSender
	cache       UserCache
	files       FileStorage
	resetTTL    time.Duration
	resetURL    string
	now         func() time.Time
}

type Option func(*Auth)

// WithCache enables read-through caching of profiles in Authenticate.
func WithCache(c UserCache) Option {
	return func(a *Auth) { a.cache = c }
}

// WithFileStorage enables avatar and cover image uploads.
func WithFileStorage(fs FileStorage) Option {
	return func(a *Auth) { a.files = fs }
}

func New(
	log *slog.Logger,
	userSaver UserSaver,
	userProvider UserProvider,
	tokens *jwt.Issuer,
	sender MessageSender,
	resetTTL time.Duration,
	resetURL string,
	opts ...Option,
) *Auth {
	a := &Auth{
		log:         log,
		usrSaver:    userSaver,
		usrProvider: userProvider,
		tokens:      tokens,
		sender:      sender,
		resetTTL:    resetTTL,
		resetURL:    resetURL,
		now:         time.Now,
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// Upload is an optional image attached to a registration.
type Upload struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
}

type RegisterInput struct {
	FullName    string
	Email       string
	PhoneNumber string
	Password    string
	Role        models.Role
	Avatar      *Upload
	CoverImage  *Upload
}

// RegisterNewUser creates the account and signs the user in.
func (a *Auth) RegisterNewUser(ctx context.Context, in RegisterInput) (models.User, models.TokenPair, error) {
	const op = "auth.RegisterNewUser"

	log := a.log.With(slog.String("op", op))

	if !in.Role.Valid() {
		return models.User{}, models.TokenPair{}, ErrInvalidRole
	}

	passHash, err := password.Hash(in.Password)
	if errors.Is(err, password.ErrTooLong) {
		return models.User{}, models.TokenPair{}, ErrPasswordTooLong
	}
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return models.User{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	user := models.User{
		ID:          uuid.NewString(),
		FullName:    in.FullName,
		Email:       in.Email,
		PhoneNumber: in.PhoneNumber,
		PassHash:    passHash,
		Role:        in.Role,
		CreatedAt:   a.now().UTC(),
	}

	var uploaded []string

	user.AvatarURL, err = a.upload(ctx, avatarKeyPrefix, user.ID, in.Avatar, &uploaded)
	if err == nil {
		user.CoverImageURL, err = a.upload(ctx, coverKeyPrefix, user.ID, in.CoverImage, &uploaded)
	}
	if err != nil {
		log.Error("failed to upload image", sl.Err(err))
		a.discardUploads(ctx, uploaded)
		return models.User{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	// The first refresh token is written together with the row.
	pair, err := a.mintPair(user)
	if err != nil {
		log.Error("failed to issue tokens", sl.Err(err))
		a.discardUploads(ctx, uploaded)
		return models.User{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	user.RefreshToken = pair.RefreshToken

	if err := a.usrSaver.SaveUser(ctx, user); err != nil {
		a.discardUploads(ctx, uploaded)

		switch {
		case errors.Is(err, storage.ErrEmailTaken):
			log.Warn("email already registered")
			return models.User{}, models.TokenPair{}, ErrEmailTaken
		case errors.Is(err, storage.ErrPhoneTaken):
			log.Warn("phone number already registered")
			return models.User{}, models.TokenPair{}, ErrPhoneTaken
		case errors.Is(err, storage.ErrUserExists):
			log.Warn("user already exists")
			return models.User{}, models.TokenPair{}, ErrUserExists
		}

		log.Error("failed to save user", sl.Err(err))
		return models.User{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user registered", slog.String("uid", user.ID))

	return user, pair, nil
}

// Login checks credentials for identifier (email or phone) within role.
// Unknown account, wrong role and wrong password are indistinguishable.
func (a *Auth) Login(ctx context.Context, identifier, pass string, role models.Role) (models.User, models.TokenPair, error) {
	const op = "auth.Login"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByIdentifier(ctx, identifier, role)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("user not found")
			return models.User{}, models.TokenPair{}, ErrInvalidCredentials
		}

		log.Error("failed to get user", sl.Err(err))
		return models.User{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	ok, err := password.Verify(user.PassHash, pass)
	if err != nil {
		log.Error("failed to verify password", sl.Err(err))
		return models.User{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		log.Info("invalid credentials", slog.String("uid", user.ID))
		return models.User{}, models.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := a.issueTokenPair(ctx, user)
	if err != nil {
		log.Error("failed to issue tokens", sl.Err(err))
		return models.User{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	user.RefreshToken = pair.RefreshToken

	if err := a.usrSaver.UpdateLastLogin(ctx, user.ID, a.now().UTC()); err != nil {
		log.Warn("failed to update last login", sl.Err(err))
	}

	log.Info("user logged in successfully", slog.String("uid", user.ID))

	return user, pair, nil
}

// Logout revokes the stored refresh token.
func (a *Auth) Logout(ctx context.Context, userID string) error {
	const op = "auth.Logout"

	log := a.log.With(slog.String("op", op))

	if err := a.usrSaver.ClearRefreshToken(ctx, userID); err != nil {
		log.Error("failed to clear refresh token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	a.invalidate(ctx, log, userID)

	log.Info("logout successful", slog.String("uid", userID))

	return nil
}

// Refresh exchanges the current refresh token for a new pair. The
// presented token must equal the stored one; the swap is conditional, so
// of two concurrent calls with the same token only one succeeds.
func (a *Auth) Refresh(ctx context.Context, refreshToken string) (models.User, models.TokenPair, error) {
	const op = "auth.Refresh"

	log := a.log.With(slog.String("op", op))

	if refreshToken == "" {
		return models.User{}, models.TokenPair{}, ErrRefreshTokenRequired
	}

	uid, err := a.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		log.Info("invalid refresh token", sl.Err(err))
		return models.User{}, models.TokenPair{}, ErrInvalidRefreshToken
	}

	user, err := a.usrProvider.UserByID(ctx, uid)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("refresh token subject not found", slog.String("uid", uid))
			return models.User{}, models.TokenPair{}, ErrSessionUserNotFound
		}

		log.Error("failed to load user", sl.Err(err))
		return models.User{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if user.RefreshToken == "" || subtle.ConstantTimeCompare([]byte(user.RefreshToken), []byte(refreshToken)) != 1 {
		log.Warn("refresh token superseded", slog.String("uid", uid))
		return models.User{}, models.TokenPair{}, ErrRefreshTokenSuperseded
	}

	pair, err := a.mintPair(user)
	if err != nil {
		log.Error("failed to issue tokens", sl.Err(err))
		return models.User{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrSaver.RotateRefreshToken(ctx, user.ID, refreshToken, pair.RefreshToken); err != nil {
		if errors.Is(err, storage.ErrRefreshTokenStale) {
			log.Warn("lost refresh race", slog.String("uid", uid))
			return models.User{}, models.TokenPair{}, ErrRefreshTokenSuperseded
		}

		log.Error("failed to rotate refresh token", sl.Err(err))
		return models.User{}, models.TokenPair{}, fmt.Errorf("%s: %w", op, err)
	}
	user.RefreshToken = pair.RefreshToken

	log.Info("refresh successful", slog.String("uid", uid))

	return user, pair, nil
}

// ChangePassword replaces the password of an authenticated user.
func (a *Auth) ChangePassword(ctx context.Context, userID, oldPass, newPass string) error {
	const op = "auth.ChangePassword"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrSessionUserNotFound
		}

		log.Error("failed to load user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	ok, err := password.Verify(user.PassHash, oldPass)
	if err != nil {
		log.Error("failed to verify password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	if !ok {
		log.Info("old password mismatch", slog.String("uid", userID))
		return ErrIncorrectPassword
	}

	passHash, err := password.Hash(newPass)
	if errors.Is(err, password.ErrTooLong) {
		return ErrPasswordTooLong
	}
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := a.usrSaver.UpdatePassword(ctx, userID, passHash); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return ErrSessionUserNotFound
		}

		log.Error("failed to update password", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	a.invalidate(ctx, log, userID)

	log.Info("password changed", slog.String("uid", userID))

	return nil
}

// ForgotPassword stores a fresh reset token and mails a link carrying it.
// If the mail cannot be dispatched the token is withdrawn again.
func (a *Auth) ForgotPassword(ctx context.Context, email string) error {
	const op = "auth.ForgotPassword"

	log := a.log.With(slog.String("op", op))

	user, err := a.usrProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			log.Info("no account for email")
			return ErrUserNotFound
		}

		log.Error("failed to get user", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	token, err := random.HexToken(resetTokenBytes)
	if err != nil {
		log.Error("failed to generate reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	expiry := a.now().Add(a.resetTTL)

	if err := a.usrSaver.SetResetToken(ctx, user.ID, token, expiry); err != nil {
		log.Error("failed to store reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	link, err := a.resetLink(token)
	if err == nil {
		err = a.sender.SendMessage(ctx, models.Message{
			Email:   user.Email,
			Subject: "Reset your password",
			Name:    user.FullName,
			Link:    link,
			Purpose: models.PurposePasswordReset,
		})
	}
	if err != nil {
		log.Error("failed to dispatch reset email", slog.String("uid", user.ID), sl.Err(err))

		rbCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
		defer cancel()

		if rbErr := a.usrSaver.ClearResetToken(rbCtx, user.ID, token); rbErr != nil {
			log.Error("failed to roll back reset token", slog.String("uid", user.ID), sl.Err(rbErr))
		}

		return fmt.Errorf("%s: %w", op, ErrEmailDelivery)
	}

	log.Info("reset email dispatched", slog.String("uid", user.ID))

	return nil
}

// ValidateResetToken reports whether token is pending and unexpired.
// It never changes state.
func (a *Auth) ValidateResetToken(ctx context.Context, token string) error {
	const op = "auth.ValidateResetToken"

	if token == "" {
		return ErrInvalidResetToken
	}

	if _, err := a.usrProvider.UserByResetToken(ctx, token, a.now()); err != nil {
		if errors.Is(err, storage.ErrResetTokenNotFound) {
			return ErrInvalidResetToken
		}

		a.log.Error("failed to look up reset token", slog.String("op", op), sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// ResetPassword sets a new password and consumes the reset token in one
// store operation. A second use of the same token fails.
func (a *Auth) ResetPassword(ctx context.Context, token, newPass string) error {
	const op = "auth.ResetPassword"

	log := a.log.With(slog.String("op", op))

	if err := a.ValidateResetToken(ctx, token); err != nil {
		return err
	}

	passHash, err := password.Hash(newPass)
	if errors.Is(err, password.ErrTooLong) {
		return ErrPasswordTooLong
	}
	if err != nil {
		log.Error("failed to generate password hash", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	uid, err := a.usrSaver.ConsumeResetToken(ctx, token, passHash, a.now())
	if err != nil {
		if errors.Is(err, storage.ErrResetTokenNotFound) {
			log.Info("reset token used concurrently or expired")
			return ErrInvalidResetToken
		}

		log.Error("failed to consume reset token", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	a.invalidate(ctx, log, uid)

	log.Info("password reset", slog.String("uid", uid))

	return nil
}

// Authenticate resolves an access token to the user it was issued for.
func (a *Auth) Authenticate(ctx context.Context, accessToken string) (models.PublicUser, error) {
	const op = "auth.Authenticate"

	if accessToken == "" {
		return models.PublicUser{}, ErrNoToken
	}

	claims, err := a.tokens.ParseAccessToken(accessToken)
	if err != nil {
		return models.PublicUser{}, ErrInvalidToken
	}

	log := a.log.With(slog.String("op", op), slog.String("uid", claims.Subject))

	if a.cache != nil {
		cached, err := a.cache.CachedUser(ctx, claims.Subject)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, storage.ErrCacheMiss) {
			log.Warn("profile cache unavailable", sl.Err(err))
		}
	}

	user, err := a.usrProvider.UserByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			return models.PublicUser{}, ErrSessionUserNotFound
		}

		log.Error("failed to load user", sl.Err(err))
		return models.PublicUser{}, fmt.Errorf("%s: %w", op, err)
	}

	public := user.Public()

	if a.cache != nil {
		if err := a.cache.CacheUser(ctx, public); err != nil {
			log.Warn("failed to cache profile", sl.Err(err))
		}
	}

	return public, nil
}

// issueTokenPair mints both tokens and overwrites the stored refresh token.
func (a *Auth) issueTokenPair(ctx context.Context, user models.User) (models.TokenPair, error) {
	pair, err := a.mintPair(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	if err := a.usrSaver.SetRefreshToken(ctx, user.ID, pair.RefreshToken); err != nil {
		return models.TokenPair{}, err
	}

	return pair, nil
}

func (a *Auth) mintPair(user models.User) (models.TokenPair, error) {
	access, err := a.tokens.NewAccessToken(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	refresh, err := a.tokens.NewRefreshToken(user)
	if err != nil {
		return models.TokenPair{}, err
	}

	return models.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (a *Auth) resetLink(token string) (string, error) {
	u, err := url.Parse(a.resetURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("token", token)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (a *Auth) invalidate(ctx context.Context, log *slog.Logger, userID string) {
	if a.cache == nil {
		return
	}

	if err := a.cache.InvalidateUser(ctx, userID); err != nil {
		log.Warn("failed to invalidate cached profile", sl.Err(err))
	}
}

func (a *Auth) upload(ctx context.Context, prefix, userID string, up *Upload, uploaded *[]string) (string, error) {
	if up == nil || up.Body == nil {
		return "", nil
	}

	if a.files == nil {
		a.log.Warn("file storage disabled, dropping upload", slog.String("kind", prefix))
		return "", nil
	}

	ext := strings.ToLower(path.Ext(up.Filename))
	if ext == "" {
		ext = defaultUploadExt
	}

	key := fmt.Sprintf("%s/%s-%s%s", prefix, userID, uuid.NewString(), ext)

	contentType := up.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	u, err := a.files.Upload(ctx, key, contentType, up.Body, up.Size)
	if err != nil {
		return "", err
	}

	*uploaded = append(*uploaded, key)

	return u, nil
}

func (a *Auth) discardUploads(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), rollbackTimeout)
	defer cancel()

	for _, key := range keys {
		if err := a.files.Delete(ctx, key); err != nil {
			a.log.Error("failed to delete orphaned upload", slog.String("key", key), sl.Err(err))
		}
	}
}
