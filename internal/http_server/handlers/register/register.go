package register

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"jobportal/internal/auth"
	"jobportal/internal/http_server/apierr"
	"jobportal/internal/http_server/cookies"
	resp "jobportal/internal/lib/api/response"
	"jobportal/internal/lib/logger/sl"
	"jobportal/internal/models"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"
)

const maxMultipartMemory = 10 << 20

type Request struct {
	FullName    string `json:"fullName" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6,max=72"`
	PhoneNumber string `json:"phoneNumber" validate:"required,numeric,min=7,max=15"`
	Role        string `json:"role" validate:"required,oneof=student recruiter"`
}

type Response struct {
	resp.Response
	User         models.PublicUser `json:"user"`
	AccessToken  string            `json:"accessToken"`
	RefreshToken string            `json:"refreshToken"`
}

type UserRegisterer interface {
	RegisterNewUser(ctx context.Context, in auth.RegisterInput) (models.User, models.TokenPair, error)
}

// New accepts either a JSON body or a multipart form carrying optional
// avatar and coverImage files.
func New(
	log *slog.Logger,
	validate *validator.Validate,
	registerer UserRegisterer,
	cookieManager *cookies.Manager,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.register.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		var (
			req    Request
			avatar *auth.Upload
			cover  *auth.Upload
		)

		if isMultipart(r) {
			if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
				log.Info("Failed to parse multipart form", sl.Err(err))
				apierr.BadRequest(w, r, "Failed to decode request")

				return
			}
			defer r.MultipartForm.RemoveAll()

			req = Request{
				FullName:    r.FormValue("fullName"),
				Email:       r.FormValue("email"),
				Password:    r.FormValue("password"),
				PhoneNumber: r.FormValue("phoneNumber"),
				Role:        r.FormValue("role"),
			}

			var (
				avatarFile, coverFile multipart.File
				err                   error
			)
			avatar, avatarFile, err = formImage(r, "avatar")
			if err == nil {
				cover, coverFile, err = formImage(r, "coverImage")
			}
			for _, f := range []multipart.File{avatarFile, coverFile} {
				if f != nil {
					defer f.Close()
				}
			}
			if err != nil {
				log.Info("Invalid upload", sl.Err(err))
				apierr.BadRequest(w, r, err.Error())

				return
			}
		} else if err := render.DecodeJSON(r.Body, &req); err != nil {
			log.Info("Failed to decode request body", sl.Err(err))
			apierr.BadRequest(w, r, "Failed to decode request")

			return
		}

		if err := validate.Struct(req); err != nil {
			log.Info("Invalid request", sl.Err(err))
			apierr.Validation(w, r, err)

			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
		defer cancel()

		user, pair, err := registerer.RegisterNewUser(ctx, auth.RegisterInput{
			FullName:    strings.TrimSpace(req.FullName),
			Email:       strings.ToLower(strings.TrimSpace(req.Email)),
			PhoneNumber: req.PhoneNumber,
			Password:    req.Password,
			Role:        models.Role(req.Role),
			Avatar:      avatar,
			CoverImage:  cover,
		})
		if err != nil {
			apierr.Render(w, r, log, err)

			return
		}

		log.Info("User registered", slog.String("id", user.ID))

		cookieManager.SetTokens(w, pair)

		render.Status(r, http.StatusCreated)
		render.JSON(w, r, Response{
			Response:     resp.OK("User registered successfully"),
			User:         user.Public(),
			AccessToken:  pair.AccessToken,
			RefreshToken: pair.RefreshToken,
		})
	}
}

func isMultipart(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
}

// formImage returns nil when the field is absent. The caller closes the
// returned file.
func formImage(r *http.Request, field string) (*auth.Upload, multipart.File, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil, nil
		}
		return nil, nil, err
	}

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		file.Close()
		return nil, nil, fmt.Errorf("%s must be an image", field)
	}

	return &auth.Upload{
		Filename:    header.Filename,
		ContentType: contentType,
		Size:        header.Size,
		Body:        file,
	}, file, nil
}
