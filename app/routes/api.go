// Package routes wires the HTTP route table.
package routes

import (
	"net/http"

	"github.com/arthomesoni/arthome/app/controllers"
	appgraphql "github.com/arthomesoni/arthome/app/graphql"
	"github.com/arthomesoni/arthome/app/models"
	"github.com/arthomesoni/arthome/app/repositories"
	"github.com/arthomesoni/arthome/app/services"
	"github.com/arthomesoni/arthome/pkg/logger"
	"github.com/arthomesoni/arthome/pkg/metrics"
	"github.com/arthomesoni/arthome/pkg/middleware"
	"github.com/arthomesoni/arthome/pkg/rbac"
	"github.com/arthomesoni/arthome/pkg/response"
	"github.com/arthomesoni/arthome/pkg/router"
	"github.com/arthomesoni/arthome/pkg/storage"
	"github.com/arthomesoni/arthome/pkg/ws"
)

// RegisterAPI builds the full route table over the repositories and services.
func RegisterAPI(r *router.Router, hub *ws.Hub) {
	users := repositories.NewUserRepository()
	paintings := repositories.NewPaintingRepository()
	workshops := repositories.NewWorkshopRepository()
	carts := repositories.NewCartRepository()
	orders := repositories.NewOrderRepository()
	promos := repositories.NewPromoRepository()

	authSvc := services.NewAuthService(users)
	catalogSvc := services.NewCatalogService(paintings, workshops)
	bookingSvc := services.NewBookingService(workshops)
	cartSvc := services.NewCartService(carts)
	orderSvc := services.NewOrderService(orders)
	promoSvc := services.NewPromoService(promos)
	reportSvc := services.NewReportService(orders, workshops)

	authCtl := controllers.NewAuthController(authSvc)
	paintingCtl := controllers.NewPaintingController(catalogSvc, authSvc)
	workshopCtl := controllers.NewWorkshopController(catalogSvc, bookingSvc, authSvc)
	cartCtl := controllers.NewCartController(cartSvc)
	orderCtl := controllers.NewOrderController(orderSvc)
	promoCtl := controllers.NewPromoController(promoSvc)
	reportCtl := controllers.NewReportController(reportSvc)
	liveCtl := controllers.NewLiveController(hub)

	api := r.Group("/api")
	api.Get("", "api.liveness", liveness)

	// auth
	authGroup := api.Group("/auth")
	authGroup.Post("/register", "auth.register", authCtl.Register)
	authGroup.Post("/login", "auth.login", authCtl.Login)
	authGroup.Get("/me", "auth.me", authCtl.Me, middleware.Auth)
	authGroup.Put("/profile", "auth.profile", authCtl.UpdateProfile, middleware.Auth)
	authGroup.Get("/users", "auth.users", authCtl.Users, middleware.Auth, rbac.AdminOnly())
	authGroup.Put("/users/{id}/role", "auth.users.role", authCtl.SetRole, middleware.Auth, rbac.AdminOnly())

	// paintings
	paintingsGroup := api.Group("/paintings")
	paintingsGroup.Get("", "paintings.list", paintingCtl.List)
	paintingsGroup.Get("/{id}", "paintings.get", paintingCtl.Get)
	paintingsGroup.Post("", "paintings.create", paintingCtl.Create,
		middleware.Auth, rbac.HasRole(models.RoleArtist, models.RoleAdmin))
	paintingsGroup.Put("/{id}", "paintings.update", paintingCtl.Update,
		middleware.Auth, rbac.HasRole(models.RoleArtist, models.RoleAdmin))
	paintingsGroup.Delete("/{id}", "paintings.delete", paintingCtl.Delete,
		middleware.Auth, rbac.HasRole(models.RoleArtist, models.RoleAdmin))

	// workshops
	workshopsGroup := api.Group("/workshops")
	workshopsGroup.Get("", "workshops.list", workshopCtl.List)
	workshopsGroup.Get("/{id}", "workshops.get", workshopCtl.Get)
	workshopsGroup.Post("", "workshops.create", workshopCtl.Create,
		middleware.Auth, rbac.HasRole(models.RoleArtist, models.RoleAdmin))
	workshopsGroup.Put("/{id}", "workshops.update", workshopCtl.Update,
		middleware.Auth, rbac.HasRole(models.RoleArtist, models.RoleAdmin))
	workshopsGroup.Delete("/{id}", "workshops.delete", workshopCtl.Delete,
		middleware.Auth, rbac.HasRole(models.RoleArtist, models.RoleAdmin))
	workshopsGroup.Post("/{id}/book", "workshops.book", workshopCtl.Book, middleware.Auth)

	// cart
	cartGroup := api.Group("/cart", middleware.Auth)
	cartGroup.Get("", "cart.get", cartCtl.Get)
	cartGroup.Post("/add", "cart.add", cartCtl.Add)
	cartGroup.Put("/update", "cart.update", cartCtl.UpdateQuantity)
	cartGroup.Delete("/remove/{itemId}", "cart.remove", cartCtl.Remove)
	cartGroup.Delete("/clear", "cart.clear", cartCtl.Clear)

	// orders
	ordersGroup := api.Group("/orders", middleware.Auth)
	ordersGroup.Post("", "orders.create", orderCtl.Create)
	ordersGroup.Get("", "orders.list", orderCtl.List, rbac.AdminOnly())
	ordersGroup.Get("/user", "orders.mine", orderCtl.Mine)
	ordersGroup.Get("/{id}", "orders.get", orderCtl.Get)
	ordersGroup.Put("/{id}/status", "orders.status", orderCtl.SetStatus, rbac.AdminOnly())
	ordersGroup.Delete("/{id}", "orders.delete", orderCtl.Delete, rbac.AdminOnly())

	// promo codes
	promosGroup := api.Group("/promocodes", middleware.Auth)
	promosGroup.Get("", "promocodes.list", promoCtl.List, rbac.AdminOnly())
	promosGroup.Post("", "promocodes.create", promoCtl.Create, rbac.AdminOnly())
	promosGroup.Post("/verify", "promocodes.verify", promoCtl.Verify)
	promosGroup.Post("/use", "promocodes.use", promoCtl.Use)
	promosGroup.Put("/{id}", "promocodes.update", promoCtl.Update, rbac.AdminOnly())
	promosGroup.Delete("/{id}", "promocodes.delete", promoCtl.Delete, rbac.AdminOnly())

	// reports
	reportsGroup := api.Group("/reports", middleware.Auth, rbac.AdminOnly())
	reportsGroup.Get("/sales", "reports.sales", reportCtl.Sales)
	reportsGroup.Get("/workshops", "reports.workshops", reportCtl.Workshops)
	reportsGroup.Get("/export", "reports.export", reportCtl.Export)

	// graphql (read-only catalog)
	schema, err := appgraphql.NewSchema(catalogSvc)
	if err != nil {
		logger.Error("routes: graphql schema", "error", err)
	} else {
		gqlHandler := appgraphql.Handler(schema)
		api.Get("/graphql", "graphql.get", gqlHandler)
		api.Post("/graphql", "graphql.post", gqlHandler)
	}

	// admin live feed (token via query param; see LiveController)
	api.Get("/admin/live", "admin.live", liveCtl.Connect)

	// operational endpoints
	r.Get("/metrics", "metrics", metrics.Handler())
	r.Mount("/storage", http.StripPrefix("/storage/",
		http.FileServer(http.Dir(storage.LocalRoot()))))
}

func liveness(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"service": "arthome-api",
	})
}
