// Package webui is the server-rendered front end. It never touches the
// database; everything goes through the task and user services, normally the
// HTTP client sets pointed at the API server.
package webui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/asshiddiq1306/TaskManagement/result"
	"github.com/asshiddiq1306/TaskManagement/tasksvc"
	"github.com/asshiddiq1306/TaskManagement/tasksvc/pkg/taskservice"
	"github.com/asshiddiq1306/TaskManagement/usersvc/pkg/userservice"
	"github.com/go-kit/kit/log"
	"github.com/gorilla/mux"
)

//go:embed templates/*.html
var templatesFS embed.FS

// actingUser is sent as the audit identity on every mutation the UI makes.
const actingUser = "web-user"

var (
	allPriorities = []tasksvc.Priority{
		tasksvc.PriorityLow,
		tasksvc.PriorityMedium,
		tasksvc.PriorityHigh,
		tasksvc.PriorityCritical,
	}
	allStatuses = []tasksvc.Status{
		tasksvc.StatusPending,
		tasksvc.StatusInProgress,
		tasksvc.StatusCompleted,
		tasksvc.StatusCancelled,
	}
)

type Handler struct {
	tasks  taskservice.Service
	users  userservice.Service
	logger log.Logger
	pages  map[string]*template.Template
}

func NewHandler(tasks taskservice.Service, users userservice.Service, logger log.Logger) (*Handler, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{
		"tasks.html", "task.html", "task_form.html", "users.html", "user_form.html",
	} {
		t, err := template.ParseFS(templatesFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		pages[name] = t
	}
	return &Handler{tasks: tasks, users: users, logger: logger, pages: pages}, nil
}

func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	r.Methods("GET").Path("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/tasks", http.StatusFound)
	})

	r.Methods("GET").Path("/tasks/overdue").HandlerFunc(h.overdueTasks)
	r.Methods("GET").Path("/tasks/new").HandlerFunc(h.newTaskForm)
	r.Methods("GET").Path("/tasks/user/{user_id}").HandlerFunc(h.tasksByUser)
	r.Methods("GET").Path("/tasks").HandlerFunc(h.listTasks)
	r.Methods("POST").Path("/tasks").HandlerFunc(h.createTask)
	r.Methods("GET").Path("/tasks/{task_id}").HandlerFunc(h.showTask)
	r.Methods("GET").Path("/tasks/{task_id}/edit").HandlerFunc(h.editTaskForm)
	r.Methods("POST").Path("/tasks/{task_id}/edit").HandlerFunc(h.updateTask)
	r.Methods("POST").Path("/tasks/{task_id}/status").HandlerFunc(h.updateTaskStatus)
	r.Methods("POST").Path("/tasks/{task_id}/assign").HandlerFunc(h.assignTask)
	r.Methods("POST").Path("/tasks/{task_id}/unassign").HandlerFunc(h.unassignTask)
	r.Methods("POST").Path("/tasks/{task_id}/delete").HandlerFunc(h.deleteTask)

	r.Methods("GET").Path("/users/new").HandlerFunc(h.newUserForm)
	r.Methods("GET").Path("/users").HandlerFunc(h.listUsers)
	r.Methods("POST").Path("/users").HandlerFunc(h.createUser)
	r.Methods("POST").Path("/users/{user_id}/delete").HandlerFunc(h.deleteUser)

	return r
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, page string, data map[string]interface{}) {
	data["Flash"] = r.URL.Query().Get("flash")
	data["FlashError"] = r.URL.Query().Get("flashErr")
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.pages[page].ExecuteTemplate(w, "layout", data); err != nil {
		h.logger.Log("page", page, "err", err)
	}
}

func redirectFlash(w http.ResponseWriter, r *http.Request, target, flash string) {
	http.Redirect(w, r, target+"?flash="+url.QueryEscape(flash), http.StatusSeeOther)
}

func redirectFlashError(w http.ResponseWriter, r *http.Request, target, msg string) {
	http.Redirect(w, r, target+"?flashErr="+url.QueryEscape(msg), http.StatusSeeOther)
}

// failureText flattens an envelope failure to one line for a flash message.
func failureText[T any](res result.Result[T]) string {
	if errs := res.ValidationErrors(); len(errs) > 0 {
		text := errs[0]
		for _, e := range errs[1:] {
			text += "; " + e
		}
		return text
	}
	return res.ErrorMessage()
}

func voidFailureText(res result.Void) string {
	if errs := res.ValidationErrors(); len(errs) > 0 {
		text := errs[0]
		for _, e := range errs[1:] {
			text += "; " + e
		}
		return text
	}
	return res.ErrorMessage()
}

func pathID(r *http.Request, name string) (uint64, bool) {
	id, err := strconv.ParseUint(mux.Vars(r)[name], 10, 64)
	return id, err == nil
}

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	heading := "Tasks"
	filter := r.URL.Query().Get("status")

	var res result.Result[[]taskservice.TaskResponse]
	if filter != "" {
		status, err := tasksvc.ParseStatus(filter)
		if err != nil {
			redirectFlashError(w, r, "/tasks", err.Error())
			return
		}
		heading = status.String() + " tasks"
		res = h.tasks.TasksByStatus(r.Context(), status)
	} else {
		res = h.tasks.Tasks(r.Context())
	}
	if !res.IsSuccess() {
		h.render(w, r, "tasks.html", map[string]interface{}{
			"Heading": heading, "Statuses": allStatuses, "StatusFilter": filter,
		})
		return
	}

	h.render(w, r, "tasks.html", map[string]interface{}{
		"Heading":      heading,
		"Tasks":        res.Data(),
		"Statuses":     allStatuses,
		"StatusFilter": filter,
	})
}

func (h *Handler) overdueTasks(w http.ResponseWriter, r *http.Request) {
	res := h.tasks.OverdueTasks(r.Context())
	data := map[string]interface{}{
		"Heading": "Overdue tasks", "Statuses": allStatuses, "StatusFilter": "",
	}
	if res.IsSuccess() {
		data["Tasks"] = res.Data()
	}
	h.render(w, r, "tasks.html", data)
}

func (h *Handler) tasksByUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "user_id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	heading := "Assigned tasks"
	if ures := h.users.User(r.Context(), id); ures.IsSuccess() {
		heading = "Tasks for " + ures.Data().Name
	}

	res := h.tasks.TasksByUser(r.Context(), id)
	data := map[string]interface{}{
		"Heading": heading, "Statuses": allStatuses, "StatusFilter": "",
	}
	if res.IsSuccess() {
		data["Tasks"] = res.Data()
	}
	h.render(w, r, "tasks.html", data)
}

func (h *Handler) showTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "task_id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	res := h.tasks.Task(r.Context(), id)
	if !res.IsSuccess() {
		redirectFlashError(w, r, "/tasks", failureText(res))
		return
	}

	data := map[string]interface{}{
		"Task":     res.Data(),
		"Statuses": allStatuses,
	}
	if ures := h.users.Users(r.Context()); ures.IsSuccess() {
		data["Users"] = ures.Data()
	}
	h.render(w, r, "task.html", data)
}

type taskForm struct {
	Title       string
	Description string
	DueDate     string
	Priority    string
}

func taskFormFromRequest(r *http.Request) taskForm {
	return taskForm{
		Title:       r.PostFormValue("title"),
		Description: r.PostFormValue("description"),
		DueDate:     r.PostFormValue("dueDate"),
		Priority:    r.PostFormValue("priority"),
	}
}

func (f taskForm) dueDate() (*time.Time, error) {
	if f.DueDate == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", f.DueDate)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q", f.DueDate)
	}
	// End of the local day, so a due date of "today" is not already past.
	t = time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, time.Local)
	return &t, nil
}

func (f taskForm) priority() tasksvc.Priority {
	p, err := tasksvc.ParsePriority(f.Priority)
	if err != nil {
		return tasksvc.PriorityMedium
	}
	return p
}

func (h *Handler) newTaskForm(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{
		"Heading":      "New task",
		"Action":       "/tasks",
		"Form":         taskForm{Priority: tasksvc.PriorityMedium.String()},
		"Priorities":   allPriorities,
		"ShowAssignee": true,
	}
	if ures := h.users.Users(r.Context()); ures.IsSuccess() {
		data["Users"] = ures.Data()
	}
	h.render(w, r, "task_form.html", data)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	form := taskFormFromRequest(r)

	due, err := form.dueDate()
	if err != nil {
		h.renderTaskForm(w, r, "New task", "/tasks", form, true, []string{err.Error()})
		return
	}

	params := taskservice.CreateTaskParams{
		Title:       form.Title,
		Description: form.Description,
		DueDate:     due,
		Priority:    form.priority(),
	}
	if v := r.PostFormValue("assignedUserId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			h.renderTaskForm(w, r, "New task", "/tasks", form, true, []string{"Choose a valid user to assign"})
			return
		}
		params.AssignedUserID = &id
	}

	res := h.tasks.CreateTask(r.Context(), params, actingUser)
	if !res.IsSuccess() {
		errs := res.ValidationErrors()
		if len(errs) == 0 {
			errs = []string{res.ErrorMessage()}
		}
		h.renderTaskForm(w, r, "New task", "/tasks", form, true, errs)
		return
	}
	redirectFlash(w, r, "/tasks", "Task created successfully!")
}

func (h *Handler) renderTaskForm(w http.ResponseWriter, r *http.Request, heading, action string, form taskForm, showAssignee bool, errs []string) {
	data := map[string]interface{}{
		"Heading":      heading,
		"Action":       action,
		"Form":         form,
		"Priorities":   allPriorities,
		"ShowAssignee": showAssignee,
		"Errors":       errs,
	}
	if showAssignee {
		if ures := h.users.Users(r.Context()); ures.IsSuccess() {
			data["Users"] = ures.Data()
		}
	}
	h.render(w, r, "task_form.html", data)
}

func (h *Handler) editTaskForm(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "task_id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	res := h.tasks.Task(r.Context(), id)
	if !res.IsSuccess() {
		redirectFlashError(w, r, "/tasks", failureText(res))
		return
	}

	task := res.Data()
	form := taskForm{
		Title:       task.Title,
		Description: task.Description,
		Priority:    task.Priority.String(),
	}
	if task.DueDate != nil {
		form.DueDate = task.DueDate.Format("2006-01-02")
	}
	h.renderTaskForm(w, r, "Edit task", fmt.Sprintf("/tasks/%d/edit", id), form, false, nil)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "task_id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	form := taskFormFromRequest(r)
	action := fmt.Sprintf("/tasks/%d/edit", id)

	due, err := form.dueDate()
	if err != nil {
		h.renderTaskForm(w, r, "Edit task", action, form, false, []string{err.Error()})
		return
	}

	params := taskservice.UpdateTaskParams{
		Title:       form.Title,
		Description: form.Description,
		DueDate:     due,
		Priority:    form.priority(),
	}
	res := h.tasks.UpdateTask(r.Context(), id, params, actingUser)
	if !res.IsSuccess() {
		errs := res.ValidationErrors()
		if len(errs) == 0 {
			errs = []string{res.ErrorMessage()}
		}
		h.renderTaskForm(w, r, "Edit task", action, form, false, errs)
		return
	}
	redirectFlash(w, r, fmt.Sprintf("/tasks/%d", id), "Task updated successfully!")
}

func (h *Handler) updateTaskStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "task_id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	target := fmt.Sprintf("/tasks/%d", id)

	status, err := tasksvc.ParseStatus(r.PostFormValue("status"))
	if err != nil {
		redirectFlashError(w, r, target, err.Error())
		return
	}

	res := h.tasks.UpdateTaskStatus(r.Context(), id, status, actingUser)
	if !res.IsSuccess() {
		redirectFlashError(w, r, target, failureText(res))
		return
	}
	redirectFlash(w, r, target, "Task status updated successfully!")
}

func (h *Handler) assignTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "task_id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	target := fmt.Sprintf("/tasks/%d", id)

	userID, err := strconv.ParseUint(r.PostFormValue("userId"), 10, 64)
	if err != nil {
		redirectFlashError(w, r, target, "Choose a user to assign")
		return
	}

	res := h.tasks.AssignTask(r.Context(), id, userID, actingUser)
	if !res.IsSuccess() {
		redirectFlashError(w, r, target, failureText(res))
		return
	}
	redirectFlash(w, r, target, "Task assigned successfully!")
}

func (h *Handler) unassignTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "task_id")
	if !ok {
		http.NotFound(w, r)
		return
	}
	target := fmt.Sprintf("/tasks/%d", id)

	res := h.tasks.UnassignTask(r.Context(), id, actingUser)
	if !res.IsSuccess() {
		redirectFlashError(w, r, target, failureText(res))
		return
	}
	redirectFlash(w, r, target, "Task unassigned successfully!")
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "task_id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	res := h.tasks.DeleteTask(r.Context(), id)
	if !res.IsSuccess() {
		redirectFlashError(w, r, fmt.Sprintf("/tasks/%d", id), voidFailureText(res))
		return
	}
	redirectFlash(w, r, "/tasks", "Task deleted successfully!")
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	data := map[string]interface{}{}
	if res := h.users.Users(r.Context()); res.IsSuccess() {
		data["Users"] = res.Data()
	}
	h.render(w, r, "users.html", data)
}

type userForm struct {
	Name  string
	Email string
}

func (h *Handler) newUserForm(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "user_form.html", map[string]interface{}{"Form": userForm{}})
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	form := userForm{
		Name:  r.PostFormValue("name"),
		Email: r.PostFormValue("email"),
	}

	res := h.users.CreateUser(r.Context(), form.Name, form.Email, actingUser)
	if !res.IsSuccess() {
		errs := res.ValidationErrors()
		if len(errs) == 0 {
			errs = []string{res.ErrorMessage()}
		}
		h.render(w, r, "user_form.html", map[string]interface{}{
			"Form": form, "Errors": errs,
		})
		return
	}
	redirectFlash(w, r, "/users", "User created successfully!")
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r, "user_id")
	if !ok {
		http.NotFound(w, r)
		return
	}

	res := h.users.DeleteUser(r.Context(), id)
	if !res.IsSuccess() {
		redirectFlashError(w, r, "/users", voidFailureText(res))
		return
	}
	redirectFlash(w, r, "/users", "User deleted successfully!")
}
