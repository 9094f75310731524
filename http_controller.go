package accounts

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/google/uuid"
)

var usernameFormat = regexp.MustCompile(`^[a-z0-9_]+$`)

// UserController exposes the account routes
type UserController struct {
	Logger glog.Logger
	Users  Users
	Tokens TokenService
}

// UserControllerOption configures the controller
type UserControllerOption func(*UserController) *UserController

// NewUserController builds the controller, panicking on missing dependencies
func NewUserController(opts ...UserControllerOption) *UserController {
	c := &UserController{}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Users == nil {
		panic("Missing Users repository in user controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in user controller...")
	}

	return c
}

// WithLogger sets the controller logger
func (a *UserController) WithLogger(logger glog.Logger) *UserController {
	a.Logger = logger
	return a
}

// RegisterRoutes mounts the account routes under /api/v1/users. Signup and
// login are public, everything else sits behind Protect, and the admin CRUD
// pair additionally behind RestrictTo.
func RegisterRoutes(app *fiber.App, controller *UserController) {
	api := app.Group("/api/v1/users")

	api.Post("/signup", controller.Signup)
	api.Post("/login", controller.Login)

	api.Use(Protect(controller.Tokens, controller.Users))

	api.Get("/me", controller.Me)
	api.Patch("/updateMe", controller.UpdateMe)
	api.Patch("/updateMyPassword", controller.UpdateMyPassword)

	api.Get("/", controller.Index)
	api.Get("/:id", controller.Show)
	api.Patch("/:id", RestrictTo(RoleAdmin), controller.Update)
	api.Delete("/:id", RestrictTo(RoleAdmin), controller.Delete)
}

// SignupRequest payload
type SignupRequest struct {
	FullName        string `json:"fullName"`
	Username        string `json:"username"`
	Bio             string `json:"bio"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Validate will run validation rules
func (r SignupRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(
				&r.FullName,
				validation.Required.Error("Full name is required."),
				validation.Length(3, 20),
			),
			validation.Field(
				&r.Username,
				validation.Required.Error("Username is required."),
				validation.Length(3, 20),
				validation.Match(usernameFormat).Error("Username can only contain lowercase letters, numbers, and underscores."),
			),
			validation.Field(
				&r.Email,
				validation.Required.Error("Email is required."),
				is.Email.Error("Please provide a valid email address."),
			),
			validation.Field(
				&r.Password,
				validation.Required.Error("Password is required."),
				validation.Length(8, 0).Error("Password must be at least 8 characters long."),
			),
			validation.Field(
				&r.PasswordConfirm,
				validation.Required.Error("Password confirmation is required."),
				validation.In(r.Password).Error("Passwords do not match."),
			),
		)
	}, "Invalid signup payload")
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateUserRequest is the write payload for profile and admin updates.
// It is the allow-list: any other submitted field is dropped at decode
// time and never reaches persistence.
type UpdateUserRequest struct {
	FullName string `json:"fullName"`
	Username string `json:"username"`
	Bio      string `json:"bio"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// Filter drops the role field unless the acting user is an admin
func (r *UpdateUserRequest) Filter(actorRole UserRole) {
	if actorRole != RoleAdmin {
		r.Role = ""
	}
}

// Validate will run validation rules; empty fields are skipped since
// updates are partial
func (r UpdateUserRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(
				&r.FullName,
				validation.Length(3, 20),
			),
			validation.Field(
				&r.Username,
				validation.Length(3, 20),
				validation.Match(usernameFormat).Error("Username can only contain lowercase letters, numbers, and underscores."),
			),
			validation.Field(
				&r.Email,
				is.Email.Error("Please provide a valid email address."),
			),
			validation.Field(
				&r.Role,
				validation.In(RoleUser, RoleAdmin),
			),
		)
	}, "Invalid update payload")
}

func (r UpdateUserRequest) toRecord() *User {
	return &User{
		FullName: r.FullName,
		Username: r.Username,
		Bio:      r.Bio,
		Email:    r.Email,
		Role:     r.Role,
	}
}

// PasswordChangeRequest payload
type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"passwordConfirm"`
}

// Validate will run validation rules
func (r PasswordChangeRequest) Validate() *goerrors.Error {
	return goerrors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(
				&r.Password,
				validation.Length(8, 0).Error("Password must be at least 8 characters long."),
			),
			validation.Field(
				&r.PasswordConfirm,
				validation.In(r.Password).Error("Passwords do not match."),
			),
		)
	}, "Invalid password change payload")
}

// Signup registers a new account and responds with a fresh token
func (a *UserController) Signup(c *fiber.Ctx) error {
	payload := new(SignupRequest)
	if err := c.BodyParser(payload); err != nil {
		return badPayload(err)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		return err
	}

	record := &User{
		FullName:     payload.FullName,
		Username:     payload.Username,
		Bio:          payload.Bio,
		Email:        payload.Email,
		PasswordHash: hash,
	}

	created, err := a.Users.Create(c.Context(), record)
	if err != nil {
		return err
	}

	return a.sendToken(c, fiber.StatusCreated, created)
}

// Login authenticates by email and password. Unknown email and wrong
// password return the same status and message on purpose.
func (a *UserController) Login(c *fiber.Ctx) error {
	payload := new(LoginRequest)
	if err := c.BodyParser(payload); err != nil {
		return badPayload(err)
	}

	if payload.Email == "" || payload.Password == "" {
		return goerrors.New("Please provide both email and password.", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	user, err := a.Users.GetByEmail(c.Context(), payload.Email, SelectPassword)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return ErrInvalidCredentials
		}
		return err
	}

	if err := ComparePasswordAndHash(payload.Password, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	return a.sendToken(c, fiber.StatusOK, user)
}

// Me reads the caller's own record. The target id is rewritten to the
// authenticated user's id before delegating to the shared lookup.
func (a *UserController) Me(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	return a.showUser(c, user.ID.String())
}

// UpdateMe applies the filtered payload to the caller's own record
func (a *UserController) UpdateMe(c *fiber.Ctx) error {
	user, err := CurrentUser(c)
	if err != nil {
		return err
	}

	return a.applyUpdate(c, user.ID, user.Role)
}

// UpdateMyPassword verifies the current password, swaps the hash, and
// issues a fresh token. Tokens issued before the change are rejected by
// the middleware from here on.
func (a *UserController) UpdateMyPassword(c *fiber.Ctx) error {
	payload := new(PasswordChangeRequest)
	if err := c.BodyParser(payload); err != nil {
		return badPayload(err)
	}

	if payload.CurrentPassword == "" || payload.Password == "" || payload.PasswordConfirm == "" {
		return goerrors.New("Please provide all required fields: currentPassword, password, and passwordConfirm.", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	current, err := CurrentUser(c)
	if err != nil {
		return err
	}

	user, err := a.Users.GetByID(c.Context(), current.ID.String(), SelectPassword)
	if err != nil {
		return err
	}

	if err := ComparePasswordAndHash(payload.CurrentPassword, user.PasswordHash); err != nil {
		return ErrCurrentPasswordWrong
	}

	hash, err := HashPassword(payload.Password)
	if err != nil {
		return err
	}

	if err := a.Users.UpdatePassword(c.Context(), user.ID, hash); err != nil {
		return err
	}

	return a.sendToken(c, fiber.StatusOK, user)
}

// Index lists all users with the public columns only
func (a *UserController) Index(c *fiber.Ctx) error {
	records, err := a.Users.List(c.Context())
	if err != nil {
		return err
	}

	users := make([]PublicUser, 0, len(records))
	for _, record := range records {
		users = append(users, record.Public())
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "success",
		"results": len(users),
		"data": fiber.Map{
			"users": users,
		},
	})
}

// Show reads a single user by id
func (a *UserController) Show(c *fiber.Ctx) error {
	return a.showUser(c, c.Params("id"))
}

// Update is the admin-only update of an arbitrary user, role included
func (a *UserController) Update(c *fiber.Ctx) error {
	current, err := CurrentUser(c)
	if err != nil {
		return err
	}

	id, err := parseUserID(c.Params("id"))
	if err != nil {
		return err
	}

	return a.applyUpdate(c, id, current.Role)
}

// Delete removes a user record
func (a *UserController) Delete(c *fiber.Ctx) error {
	id, err := parseUserID(c.Params("id"))
	if err != nil {
		return err
	}

	if err := a.Users.Delete(c.Context(), id); err != nil {
		return err
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (a *UserController) applyUpdate(c *fiber.Ctx, id uuid.UUID, actorRole UserRole) error {
	payload := new(UpdateUserRequest)
	if err := c.BodyParser(payload); err != nil {
		return badPayload(err)
	}

	payload.Filter(actorRole)

	if err := payload.Validate(); err != nil {
		return err
	}

	record := payload.toRecord()
	record.ID = id

	updated, err := a.Users.Update(c.Context(), record)
	if err != nil {
		return err
	}

	return respondUser(c, fiber.StatusOK, updated)
}

func (a *UserController) showUser(c *fiber.Ctx, id string) error {
	user, err := a.Users.GetByID(c.Context(), id)
	if err != nil {
		return err
	}

	return respondUser(c, fiber.StatusOK, user)
}

func (a *UserController) sendToken(c *fiber.Ctx, status int, user *User) error {
	token, err := a.Tokens.Generate(user.ID.String())
	if err != nil {
		return err
	}

	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"jwt":    token,
		"data": fiber.Map{
			"user": user.Public(),
		},
	})
}

func respondUser(c *fiber.Ctx, status int, user *User) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data": fiber.Map{
			"user": user.Public(),
		},
	})
}

func parseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, goerrors.New("Invalid id: "+raw+".", goerrors.CategoryBadInput).
			WithCode(goerrors.CodeBadRequest)
	}
	return id, nil
}

func badPayload(err error) error {
	return goerrors.Wrap(err, goerrors.CategoryBadInput, "Invalid request payload.").
		WithCode(goerrors.CodeBadRequest)
}
