// Package pages serves minimal server-rendered placeholders for the
// application routes. Real page content lives in the frontend; these exist
// so every protected route resolves behind the authorization gate.
package pages

import (
	"html/template"
	"net/http"

	"sisc-sesau/internal/auth"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head><meta charset="utf-8"><title>{{.Title}} — SISC-SESAU</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .UserName}}<p>Usuário: {{.UserName}} ({{.Role}})</p>{{end}}
</body>
</html>
`))

type pageData struct {
	Title    string
	UserName string
	Role     string
}

func render(w http.ResponseWriter, r *http.Request, title string) {
	data := pageData{Title: title}
	if session, ok := auth.SessionFromContext(r.Context()); ok {
		data.UserName = session.Name
		data.Role = session.Role
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = pageTemplate.Execute(w, data)
}

func Home(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, auth.LandingPath, http.StatusFound)
}

func Login(w http.ResponseWriter, r *http.Request) {
	render(w, r, "Entrar")
}

func Dashboard(w http.ResponseWriter, r *http.Request) {
	render(w, r, "Painel")
}

func ForcePasswordChange(w http.ResponseWriter, r *http.Request) {
	render(w, r, "Alterar senha")
}

func Admin(w http.ResponseWriter, r *http.Request) {
	render(w, r, "Administração")
}

func Pacientes(w http.ResponseWriter, r *http.Request) {
	render(w, r, "Pacientes")
}

func Agendamentos(w http.ResponseWriter, r *http.Request) {
	render(w, r, "Agendamentos")
}
