package controllers

import (
	"github.com/emberwick/storefront/app/identity"
	"github.com/emberwick/storefront/app/services"
	"github.com/emberwick/storefront/pkg/ctx"
	"github.com/emberwick/storefront/pkg/logger"
	"github.com/emberwick/storefront/pkg/middleware"
)

// AuthController handles registration, login and the current-user
// endpoint. Both register and login adopt the request's anonymous cart
// into the user's account.
type AuthController struct {
	auth  *services.AuthService
	carts *services.CartService
}

func NewAuthController(auth *services.AuthService, carts *services.CartService) *AuthController {
	return &AuthController{auth: auth, carts: carts}
}

type registerInput struct {
	Email     string `json:"email"     validate:"required,email"`
	Password  string `json:"password"  validate:"required,min=6"`
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName"  validate:"required"`
}

type loginInput struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates an account, logs it in and migrates the anonymous
// cart onto it.
func (ac *AuthController) Register(c *ctx.Context) {
	var in registerInput
	if !c.BindJSON(&in) {
		return
	}

	user, err := ac.auth.Register(c.Context(), services.RegisterInput{
		Email:     in.Email,
		Password:  in.Password,
		FirstName: in.FirstName,
		LastName:  in.LastName,
	})
	if err != nil {
		respondErr(c, err)
		return
	}

	ac.adopt(c, user.ID)
	c.Created(map[string]interface{}{"user": user.Summary()})
}

// Login authenticates, establishes the session and migrates the
// anonymous cart. The response carries a bearer token for clients that do
// not keep cookies.
func (ac *AuthController) Login(c *ctx.Context) {
	var in loginInput
	if !c.BindJSON(&in) {
		return
	}

	user, token, err := ac.auth.Login(c.Context(), in.Email, in.Password)
	if err != nil {
		respondErr(c, err)
		return
	}

	ac.adopt(c, user.ID)
	c.Success(map[string]interface{}{
		"user":  user.Summary(),
		"token": token,
	})
}

// Logout drops the session.
func (ac *AuthController) Logout(c *ctx.Context) {
	if err := identity.Logout(c.W, c.R); err != nil {
		respondErr(c, err)
		return
	}
	c.Success(map[string]interface{}{"loggedOut": true})
}

// Me returns the authenticated user.
func (ac *AuthController) Me(c *ctx.Context) {
	id, ok := middleware.UserIDFromCtx(c.Context())
	if !ok {
		c.Unauthorized()
		return
	}
	user, err := ac.auth.User(c.Context(), id)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.Success(user.Summary())
}

// adopt records the login in the session and moves the request's anonymous
// cart to the user. The anonymous identity is read before the session
// changes so the migration sees the pre-login cart.
func (ac *AuthController) adopt(c *ctx.Context, userID uint) {
	anonymous := identity.AnonymousID(c.R)

	if err := identity.Login(c.W, c.R, userID); err != nil {
		logger.WithCtx(c.Context()).Warn("auth: session save", "error", err)
	}
	if err := ac.carts.Migrate(c.Context(), anonymous, userID); err != nil {
		logger.WithCtx(c.Context()).Warn("auth: cart migration",
			"user_id", userID, "error", err)
	}
}
