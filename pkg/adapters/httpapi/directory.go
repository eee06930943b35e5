package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/practicanteticPX/DocuPrex-sub000/pkg/domain"
)

// employeeBody acepta idLastDigits pero employeeView nunca lo devuelve.
type employeeBody struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Status       string `json:"status,omitempty"`
	Cargo        string `json:"cargo,omitempty"`
	IDLastDigits string `json:"idLastDigits,omitempty"`
}

type employeeView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	LinkDate  time.Time `json:"linkDate"`
	Cargo     string    `json:"cargo,omitempty"`
	HasDigits bool      `json:"hasIdChallenge"`
}

func toEmployeeView(e domain.Employee) employeeView {
	return employeeView{
		ID:        e.ID,
		Name:      e.Name,
		Email:     e.Email,
		Status:    e.Status,
		LinkDate:  e.LinkDate,
		Cargo:     e.Cargo,
		HasDigits: e.IDLastDigits != "",
	}
}

func (b employeeBody) employee() domain.Employee {
	return domain.Employee{
		Name:         b.Name,
		Email:        b.Email,
		Status:       b.Status,
		Cargo:        b.Cargo,
		IDLastDigits: b.IDLastDigits,
	}
}

type groupBody struct {
	Code        string               `json:"code"`
	Name        string               `json:"name"`
	Description string               `json:"description,omitempty"`
	Members     []domain.GroupMember `json:"members,omitempty"`
}

type membersBody struct {
	Members []domain.GroupMember `json:"members"`
}

func toGroupBody(g domain.Group) groupBody {
	members := g.Members
	if members == nil {
		members = []domain.GroupMember{}
	}
	return groupBody{Code: g.Code, Name: g.Name, Description: g.Description, Members: members}
}

func (s *server) listEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := s.employees.GetAllEmployees(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]employeeView, 0, len(employees))
	for _, e := range employees {
		out = append(out, toEmployeeView(e))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) createEmployee(w http.ResponseWriter, r *http.Request) {
	var body employeeBody
	if err := readJSON(w, r, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	e, err := s.employees.CreateEmployee(r.Context(), body.employee())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeView(*e))
}

func (s *server) getEmployee(w http.ResponseWriter, r *http.Request) {
	e, err := s.employees.GetEmployeeByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeView(*e))
}

func (s *server) updateEmployee(w http.ResponseWriter, r *http.Request) {
	var body employeeBody
	if err := readJSON(w, r, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	e, err := s.employees.UpdateEmployee(r.Context(), chi.URLParam(r, "id"), body.employee())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toEmployeeView(*e))
}

func (s *server) deleteEmployee(w http.ResponseWriter, r *http.Request) {
	if err := s.employees.DeleteEmployee(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *server) listGroups(w http.ResponseWriter, r *http.Request) {
	groups, err := s.groups.GetAllGroups(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]groupBody, 0, len(groups))
	for _, g := range groups {
		out = append(out, toGroupBody(g))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *server) createGroup(w http.ResponseWriter, r *http.Request) {
	var body groupBody
	if err := readJSON(w, r, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	g, err := s.groups.CreateGroup(r.Context(), domain.Group{
		Code:        body.Code,
		Name:        body.Name,
		Description: body.Description,
		Members:     body.Members,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toGroupBody(*g))
}

func (s *server) getGroup(w http.ResponseWriter, r *http.Request) {
	g, err := s.groups.GetGroupByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupBody(*g))
}

func (s *server) updateGroup(w http.ResponseWriter, r *http.Request) {
	var body groupBody
	if err := readJSON(w, r, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	g, err := s.groups.UpdateGroup(r.Context(), chi.URLParam(r, "code"), domain.Group{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupBody(*g))
}

func (s *server) setMembers(w http.ResponseWriter, r *http.Request) {
	var body membersBody
	if err := readJSON(w, r, &body); err != nil {
		writeBadBody(w, err)
		return
	}
	g, err := s.groups.SetMembers(r.Context(), chi.URLParam(r, "code"), body.Members)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toGroupBody(*g))
}

func (s *server) deleteGroup(w http.ResponseWriter, r *http.Request) {
	if err := s.groups.DeleteGroup(r.Context(), chi.URLParam(r, "code")); err != nil {
		s.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
