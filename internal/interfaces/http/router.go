package http

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/RafaelPasos/PaystubGen-App/internal/application/auth"
	"github.com/RafaelPasos/PaystubGen-App/internal/infrastructure/pdf"
	"github.com/RafaelPasos/PaystubGen-App/internal/sync"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Provider  *sync.Provider
	Sheets    *pdf.PaySheetGenerator
	Gate      *auth.AdminGate
	JWTSecret string
	Now       func() time.Time // nil = time.Now
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// Auth (público)
	authHandler := NewAuthHandler(deps.Gate)
	api.Post("/auth/login", authHandler.Login)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	// Estado sincronizado
	stateHandler := NewStateHandler(deps.Provider)
	protected.Get("/state", stateHandler.Get)

	// Overlay de edición
	draftHandler := NewDraftHandler(deps.Provider)
	protected.Put("/rates", draftHandler.SetRate)
	protected.Put("/production", draftHandler.SetQuantity)
	protected.Post("/save", draftHandler.Save)
	protected.Post("/reset", draftHandler.Reset)

	// Equipos y empleados
	teamHandler := NewTeamHandler(deps.Provider)
	teams := protected.Group("/teams")
	teams.Post("/", teamHandler.CreateTeam)
	teams.Delete("/:id", teamHandler.DeleteTeam)
	teams.Post("/:id/employees", teamHandler.CreateEmployee)
	teams.Delete("/:id/employees/:employeeId", teamHandler.DeleteEmployee)

	// Nómina semanal
	payrollHandler := NewPayrollHandler(deps.Provider, deps.Sheets, deps.Now)
	protected.Get("/payroll", payrollHandler.Week)
	protected.Get("/payroll/pdf", payrollHandler.WeekPDF)
}
