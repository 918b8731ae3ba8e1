package router

import (
	"time"

	"github.com/ratolibre1/fungus-backend/internal/config"
	"github.com/ratolibre1/fungus-backend/internal/handler"
	"github.com/ratolibre1/fungus-backend/internal/infra"
	"github.com/ratolibre1/fungus-backend/internal/middleware"
	"github.com/ratolibre1/fungus-backend/internal/repository"
	"github.com/ratolibre1/fungus-backend/internal/service"
	"github.com/ratolibre1/fungus-backend/internal/worker"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client, autoridadCB *infra.CircuitBreaker, dispatcher *worker.Dispatcher) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(1000, time.Minute)) // 1000 req/min per IP
	r.Use(middleware.InyectarSesion())

	// ── Repositories ─────────────────────────────────────────────────────────
	compraRepo := repository.NewCompraRepository(db)
	proveedorRepo := repository.NewProveedorRepository(db)
	clienteRepo := repository.NewClienteRepository(db)
	insumoRepo := repository.NewInsumoRepository(db)
	ventaRepo := repository.NewVentaRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	compraSvc := service.NewCompraService(compraRepo, proveedorRepo, insumoRepo, dispatcher)
	partesSvc := service.NewPartesService(proveedorRepo, clienteRepo, compraRepo, ventaRepo)

	// ── Handlers ─────────────────────────────────────────────────────────────
	comprasH := handler.NewComprasHandler(compraSvc)
	partesH := handler.NewPartesHandler(partesSvc)
	insumosH := handler.NewInsumosHandler(insumoRepo, rdb)

	// ── Routes ───────────────────────────────────────────────────────────────

	r.GET("/health", handler.Health(db, rdb, autoridadCB))

	v1 := r.Group("/v1")
	{
		compras := v1.Group("/compras")
		{
			// Preview is the totals authority consumed by the draft form;
			// pure computation, no side effects.
			compras.POST("/preview", comprasH.Preview)
			compras.POST("", comprasH.Crear)
			compras.GET("", comprasH.Listar)
			compras.GET("/:id", comprasH.ObtenerPorID)
			compras.PUT("/:id", comprasH.Actualizar)
			compras.PATCH("/:id/estado", comprasH.CambiarEstado)
			compras.DELETE("/:id", comprasH.Eliminar)
		}

		v1.GET("/partes/buscar", partesH.BuscarCandidatos)

		prov := v1.Group("/proveedores")
		{
			prov.POST("", partesH.CrearProveedor)
			prov.GET("", partesH.ListarProveedores)
		}

		cli := v1.Group("/clientes")
		{
			cli.POST("", partesH.CrearCliente)
			cli.GET("", partesH.ListarClientes)
		}

		contactos := v1.Group("/contactos")
		{
			contactos.PATCH("/:id/agregar-rol-proveedor", partesH.AgregarRolProveedor)
			contactos.PATCH("/:id/agregar-rol-cliente", partesH.AgregarRolCliente)
			contactos.PATCH("/:id/quitar-rol-proveedor", partesH.QuitarRolProveedor)
			contactos.PATCH("/:id/quitar-rol-cliente", partesH.QuitarRolCliente)
		}

		v1.GET("/insumos", insumosH.Listar)
		v1.GET("/insumos/:id/precio", insumosH.ObtenerPrecio)
	}

	// Swagger UI — only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
