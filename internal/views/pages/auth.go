package pages

import (
	"github.com/a-h/templ"

	"posdash/internal/views/components"
	"posdash/internal/views/layout"
)

// AuthData feeds the sign-in family of forms.
type AuthData struct {
	Email    string
	Username string
	// Error is shown in red, Message in green.
	Error   string
	Message string
	Form    Form
	// RequireCurrent asks a signed-in user for the current password.
	RequireCurrent bool
}

func authPage(title string, content templ.Component) templ.Component {
	return layout.Auth(title+" · POS Dashboard", content)
}

func authForm(h *components.HTML, action, submit string, data AuthData, fields ...components.Field) {
	h.Render(components.Flash(components.FlashError, data.Error))
	h.Render(components.Flash(components.FlashSuccess, data.Message))
	h.Raw(`<form method="post"`).URL("action", action).Raw(`>`)
	for _, f := range fields {
		h.Render(components.Input(f))
	}
	h.Raw(`<button type="submit" class="w-full rounded-lg bg-blue-600 py-2 font-semibold text-white hover:bg-blue-700">`).Text(submit).Raw(`</button></form>`)
}

func LoginPage(data AuthData) templ.Component {
	return authPage("Sign in", LoginPartial(data))
}

func LoginPartial(data AuthData) templ.Component {
	return components.Func(func(h *components.HTML) {
		h.Raw(`<h1 class="mb-6 text-center text-2xl font-bold" data-page="login">Sign in</h1>`)
		authForm(h, "/auth/login", "Sign in", data,
			components.Field{Label: "Email", Name: "email", Type: "email", Value: data.Email, Required: true, Error: data.Form.Error("email")},
			components.Field{Label: "Password", Name: "password", Type: "password", Required: true, Error: data.Form.Error("password")},
		)
		h.Raw(`<div class="mt-4 flex justify-between text-sm">`)
		h.Raw(`<a class="text-blue-600 hover:underline" href="/auth/reset-password">Forgot password?</a>`)
		h.Raw(`<a class="text-blue-600 hover:underline" href="/auth/register">Create account</a>`)
		h.Raw(`</div>`)
	})
}

func RegisterPage(data AuthData) templ.Component {
	return authPage("Create account", RegisterPartial(data))
}

func RegisterPartial(data AuthData) templ.Component {
	return components.Func(func(h *components.HTML) {
		h.Raw(`<h1 class="mb-6 text-center text-2xl font-bold" data-page="register">Create account</h1>`)
		authForm(h, "/auth/register", "Register", data,
			components.Field{Label: "Username", Name: "username", Value: data.Username, Required: true, Error: data.Form.Error("username")},
			components.Field{Label: "Email", Name: "email", Type: "email", Value: data.Email, Required: true, Error: data.Form.Error("email")},
			components.Field{Label: "Password", Name: "password", Type: "password", Required: true, Error: data.Form.Error("password")},
		)
		h.Raw(`<p class="mt-4 text-center text-sm">Already registered? <a class="text-blue-600 hover:underline" href="/auth/login">Sign in</a></p>`)
	})
}

func ResetPasswordPage(data AuthData) templ.Component {
	return authPage("Reset password", ResetPasswordPartial(data))
}

func ResetPasswordPartial(data AuthData) templ.Component {
	return components.Func(func(h *components.HTML) {
		h.Raw(`<h1 class="mb-6 text-center text-2xl font-bold" data-page="reset-password">Reset password</h1>`)
		authForm(h, "/auth/reset-password", "Send reset link", data,
			components.Field{Label: "Email", Name: "email", Type: "email", Value: data.Email, Required: true, Error: data.Form.Error("email")},
		)
		h.Raw(`<p class="mt-4 text-center text-sm"><a class="text-blue-600 hover:underline" href="/auth/login">Back to sign in</a></p>`)
	})
}

func UpdatePasswordPage(data AuthData) templ.Component {
	return authPage("Update password", UpdatePasswordPartial(data))
}

func UpdatePasswordPartial(data AuthData) templ.Component {
	return components.Func(func(h *components.HTML) {
		h.Raw(`<h1 class="mb-6 text-center text-2xl font-bold" data-page="update-password">Set a new password</h1>`)
		var fields []components.Field
		if data.RequireCurrent {
			fields = append(fields, components.Field{Label: "Current password", Name: "current", Type: "password", Required: true, Error: data.Form.Error("current")})
		}
		fields = append(fields,
			components.Field{Label: "New password", Name: "password", Type: "password", Required: true, Error: data.Form.Error("password")},
			components.Field{Label: "Confirm password", Name: "confirm", Type: "password", Required: true, Error: data.Form.Error("confirm")},
		)
		authForm(h, "/auth/update-password", "Update password", data, fields...)
	})
}
