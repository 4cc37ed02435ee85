package server

import (
	"errors"
	"strings"
	"time"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"

	"github.com/ratul43/book-courier-server/internal/auth"
	"github.com/ratul43/book-courier-server/internal/config"
	"github.com/ratul43/book-courier-server/internal/datamodels/book"
	"github.com/ratul43/book-courier-server/internal/datamodels/order"
	"github.com/ratul43/book-courier-server/internal/datamodels/review"
	"github.com/ratul43/book-courier-server/internal/datamodels/user"
	"github.com/ratul43/book-courier-server/internal/datamodels/wishlist"
	"github.com/ratul43/book-courier-server/internal/infra/mq"
	"github.com/ratul43/book-courier-server/internal/infra/redis"
	"github.com/ratul43/book-courier-server/internal/infra/stripepay"
	"github.com/ratul43/book-courier-server/internal/middleware"
	"github.com/ratul43/book-courier-server/internal/repository/mysql"
	"github.com/ratul43/book-courier-server/internal/service"
)

// ok 统一成功响应
func ok(ctx iris.Context, data interface{}) {
	ctx.JSON(iris.Map{"code": 0, "data": data})
}

// fail 统一错误映射：上游/存储故障不再打穿进程，全部落到结构化错误体
func fail(ctx iris.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidRequest):
		ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
	case errors.Is(err, service.ErrNotFound),
		errors.Is(err, service.ErrSessionNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		ctx.StopWithJSON(404, iris.Map{"code": 404, "msg": err.Error()})
	case errors.Is(err, service.ErrUpstreamUnavailable):
		ctx.StopWithJSON(502, iris.Map{"code": 502, "msg": err.Error()})
	default:
		ctx.StopWithJSON(500, iris.Map{"code": 500, "msg": err.Error()})
	}
}

// bookRequest 图书创建/更新请求体
type bookRequest struct {
	BookName      *string `json:"bookName"`
	Author        *string `json:"author"`
	Image         *string `json:"image"`
	Price         *int64  `json:"price"`
	Category      *string `json:"category"`
	Description   *string `json:"description"`
	PublishStatus *string `json:"publishStatus"`
	AddedBy       *string `json:"addedBy"`
}

func (r *bookRequest) applyTo(b *book.Book) {
	if r.BookName != nil {
		b.BookName = *r.BookName
	}
	if r.Author != nil {
		b.Author = *r.Author
	}
	if r.Image != nil {
		b.Image = *r.Image
	}
	if r.Price != nil {
		b.Price = *r.Price
	}
	if r.Category != nil {
		b.Category = *r.Category
	}
	if r.Description != nil {
		b.Description = *r.Description
	}
	if r.PublishStatus != nil {
		b.PublishStatus = *r.PublishStatus
	}
	if r.AddedBy != nil {
		b.AddedBy = *r.AddedBy
	}
}

func (r *bookRequest) fields() map[string]interface{} {
	fields := map[string]interface{}{}
	if r.BookName != nil {
		fields["book_name"] = *r.BookName
	}
	if r.Author != nil {
		fields["author"] = *r.Author
	}
	if r.Image != nil {
		fields["image"] = *r.Image
	}
	if r.Price != nil {
		fields["price"] = *r.Price
	}
	if r.Category != nil {
		fields["category"] = *r.Category
	}
	if r.Description != nil {
		fields["description"] = *r.Description
	}
	if r.PublishStatus != nil {
		fields["publish_status"] = *r.PublishStatus
	}
	return fields
}

// RegisterRoutes 注册所有 HTTP 路由
func RegisterRoutes(app *iris.Application, cfg *config.Config) {
	// 初始化基础设施
	db := mysql.Init(&cfg.MySQL)
	redisClient := redis.Init(&cfg.Redis)
	mqConn := mq.Init(&cfg.RabbitMQ)

	// 仓储与服务
	bookRepo := mysql.NewBookRepository(db)
	orderRepo := mysql.NewOrderRepository(db)
	paymentRepo := mysql.NewPaymentRepository(db)
	userRepo := mysql.NewUserRepository(db)
	reviewRepo := mysql.NewReviewRepository(db)
	wishlistRepo := mysql.NewWishlistRepository(db)

	events := service.NewEventPublisher(mqConn)
	provider := stripepay.New(&cfg.Stripe)

	bookSvc := service.NewBookService(bookRepo, orderRepo)
	orderSvc := service.NewOrderService(orderRepo, events)
	paymentSvc := service.NewPaymentService(provider, orderRepo, paymentRepo, redisClient, events)
	userSvc := service.NewUserService(userRepo, &cfg.JWT)
	reviewSvc := service.NewReviewService(reviewRepo)
	wishlistSvc := service.NewWishlistService(wishlistRepo)

	ring := auth.NewConsistentHashRing(cfg.Auth.Nodes, cfg.Auth.HashReplicas)
	tokenCache := auth.NewTokenCache(redisClient, ring, time.Duration(cfg.Auth.TokenCacheTTLSeconds)*time.Second)

	// 前端单独部署，放开跨域
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", "*")
		ctx.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		ctx.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(204)
			return
		}
		ctx.Next()
	})

	// requireRole 解析 JWT 并校验角色，解析结果走 Redis 缓存
	requireRole := func(roles ...string) iris.Handler {
		return func(ctx iris.Context) {
			token := strings.TrimPrefix(ctx.GetHeader("Authorization"), "Bearer ")
			if token == "" {
				ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "missing token"})
				return
			}
			claims, hit, err := tokenCache.Get(ctx.Request().Context(), token)
			if err != nil {
				service.GetMonitor().RecordRedisError()
			}
			if !hit {
				claims, err = auth.ParseToken(&cfg.JWT, token)
				if err != nil {
					ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": "invalid token"})
					return
				}
				_ = tokenCache.Set(ctx.Request().Context(), token, claims)
			}
			allowed := false
			for _, role := range roles {
				if claims.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				ctx.StopWithJSON(403, iris.Map{"code": 403, "msg": "forbidden"})
				return
			}
			ctx.Values().Set("user_id", claims.UserID)
			ctx.Values().Set("email", claims.Email)
			ctx.Values().Set("role", claims.Role)
			ctx.Next()
		}
	}
	librarianOnly := requireRole(user.RoleLibrarian, user.RoleAdmin)
	adminOnly := requireRole(user.RoleAdmin)

	// 健康检查
	app.Get("/", func(ctx iris.Context) {
		ctx.WriteString("Hello from Server!")
	})

	// ---------- 图书 ----------

	// 全部图书（最新的在前）
	app.Get("/allBooks", func(ctx iris.Context) {
		list, err := bookSvc.ListAll(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, list)
	})

	// 已上架图书
	app.Get("/allBooks/published", func(ctx iris.Context) {
		list, err := bookSvc.ListPublished(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, list)
	})

	// 单本图书
	app.Get("/allBooks/{id:string}", func(ctx iris.Context) {
		b, err := bookSvc.GetByID(ctx.Request().Context(), ctx.Params().Get("id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, b)
	})

	// 新增图书（馆员）
	app.Post("/addBooks", librarianOnly, func(ctx iris.Context) {
		var req bookRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		b := &book.Book{}
		req.applyTo(b)
		if b.AddedBy == "" {
			b.AddedBy = ctx.Values().GetString("email")
		}
		if err := bookSvc.Create(ctx.Request().Context(), b); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, b)
	})

	// 上架/下架（馆员）
	app.Patch("/books/publish/{id:string}", librarianOnly, func(ctx iris.Context) {
		var req struct {
			PublishStatus string `json:"publishStatus"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := bookSvc.SetPublishStatus(ctx.Request().Context(), ctx.Params().Get("id"), req.PublishStatus); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"publishStatus": req.PublishStatus})
	})

	// 删除图书并级联删除其订单（馆员）
	app.Delete("/books/delete/{id:string}", librarianOnly, func(ctx iris.Context) {
		res, err := bookSvc.Delete(ctx.Request().Context(), ctx.Params().Get("id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, res)
	})

	// 已上架图书按任意白名单字段排序
	app.Get("/books/sorting", func(ctx iris.Context) {
		column := ctx.URLParamDefault("sort", "createdAt")
		direction := ctx.URLParamDefault("order", "desc")
		list, err := bookSvc.ListPublishedSorted(ctx.Request().Context(), column, direction)
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, list)
	})

	// 馆员更新图书资料
	app.Patch("/librarian/bookUpdate/{id:string}", librarianOnly, func(ctx iris.Context) {
		var req bookRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := bookSvc.UpdateFields(ctx.Request().Context(), ctx.Params().Get("id"), req.fields()); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"modified": true})
	})

	// ---------- 心愿单 ----------

	app.Post("/allBooks/wishlist", func(ctx iris.Context) {
		var item wishlist.Item
		if err := ctx.ReadJSON(&item); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := wishlistSvc.Add(ctx.Request().Context(), &item); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, item)
	})

	app.Get("/books/wishListed", func(ctx iris.Context) {
		list, err := wishlistSvc.List(ctx.Request().Context(), ctx.URLParam("email"))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, list)
	})

	// ---------- 订单 ----------

	// 用户下单
	app.Post("/orders", func(ctx iris.Context) {
		var o order.Order
		if err := ctx.ReadJSON(&o); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := orderSvc.Create(ctx.Request().Context(), &o); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, o)
	})

	// 全部订单（最新的在前）
	app.Get("/orders", func(ctx iris.Context) {
		list, err := orderSvc.ListRecent(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, list)
	})

	// 馆员更新订单状态
	app.Patch("/orders/{id:string}", librarianOnly, func(ctx iris.Context) {
		var req struct {
			Status string `json:"status"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := orderSvc.SetStatus(ctx.Request().Context(), ctx.Params().Get("id"), req.Status); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"status": req.Status})
	})

	// 买家取消订单
	app.Patch("/orders/cancel/{id:string}", func(ctx iris.Context) {
		if err := orderSvc.Cancel(ctx.Request().Context(), ctx.Params().Get("id")); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"status": order.StatusCancelled})
	})

	// 馆员取消订单
	app.Patch("/orders/librarian/{id:string}", librarianOnly, func(ctx iris.Context) {
		if err := orderSvc.Cancel(ctx.Request().Context(), ctx.Params().Get("id")); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"status": order.StatusCancelled})
	})

	// 支付前按邮箱校验订单
	app.Get("/orderValidate", func(ctx iris.Context) {
		o, err := orderSvc.GetByEmail(ctx.Request().Context(), ctx.URLParam("email"))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, o)
	})

	// ---------- 评论 ----------

	app.Post("/reviews", func(ctx iris.Context) {
		var r review.Review
		if err := ctx.ReadJSON(&r); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		if err := reviewSvc.Create(ctx.Request().Context(), &r); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, r)
	})

	app.Get("/reviews", func(ctx iris.Context) {
		list, err := reviewSvc.ListByBook(ctx.Request().Context(), ctx.URLParam("bookId"))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, list)
	})

	// 用户改昵称/头像后，批量刷新其评论展示信息
	app.Patch("/comment/user/update", func(ctx iris.Context) {
		var req struct {
			UserName  string `json:"userName"`
			UserPhoto string `json:"userPhoto"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		rows, err := reviewSvc.UpdateUserProfile(ctx.Request().Context(), ctx.URLParam("email"), req.UserName, req.UserPhoto)
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"modifiedCount": rows})
	})

	// ---------- 支付 ----------

	// 创建收银台会话，返回跳转地址
	app.Post("/create-checkout-session", middleware.PaymentRateLimit(), func(ctx iris.Context) {
		var req service.CheckoutRequest
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		res, err := paymentSvc.CreateCheckoutSession(ctx.Request().Context(), &req)
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, res)
	})

	// 支付确认（幂等），客户端在支付成功页轮询/重试
	app.Patch("/payment-success", middleware.PaymentRateLimit(), func(ctx iris.Context) {
		res, err := paymentSvc.ConfirmPayment(ctx.Request().Context(), ctx.URLParam("session_id"))
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, res)
	})

	// 全部支付流水（最近的在前）
	app.Get("/payments", func(ctx iris.Context) {
		list, err := paymentSvc.ListPayments(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, list)
	})

	// ---------- 用户 ----------

	app.Get("/users", func(ctx iris.Context) {
		list, err := userSvc.ListAll(ctx.Request().Context())
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, list)
	})

	// 登记用户（首次登录时前端调用）
	app.Post("/users", func(ctx iris.Context) {
		var req struct {
			user.User
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		u, err := userSvc.Upsert(ctx.Request().Context(), &req.User, req.Password)
		if err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, u)
	})

	// 更新用户资料
	app.Patch("/users", func(ctx iris.Context) {
		var req struct {
			Name  string `json:"name"`
			Photo string `json:"photo"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		fields := map[string]interface{}{}
		if req.Name != "" {
			fields["name"] = req.Name
		}
		if req.Photo != "" {
			fields["photo"] = req.Photo
		}
		if err := userSvc.UpdateByEmail(ctx.Request().Context(), ctx.URLParam("email"), fields); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"modified": true})
	})

	// 管理员指派馆员
	app.Patch("/users/make-librarian", adminOnly, func(ctx iris.Context) {
		if err := userSvc.SetRole(ctx.Request().Context(), ctx.URLParam("email"), user.RoleLibrarian); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"role": user.RoleLibrarian})
	})

	// 管理员指派管理员
	app.Patch("/users/make-admin", adminOnly, func(ctx iris.Context) {
		if err := userSvc.SetRole(ctx.Request().Context(), ctx.URLParam("email"), user.RoleAdmin); err != nil {
			fail(ctx, err)
			return
		}
		ok(ctx, iris.Map{"role": user.RoleAdmin})
	})

	// 登录换取 JWT
	app.Post("/login", func(ctx iris.Context) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := ctx.ReadJSON(&req); err != nil {
			ctx.StopWithJSON(400, iris.Map{"code": 400, "msg": err.Error()})
			return
		}
		token, err := userSvc.Login(ctx.Request().Context(), req.Email, req.Password)
		if err != nil {
			ctx.StopWithJSON(401, iris.Map{"code": 401, "msg": err.Error()})
			return
		}
		ok(ctx, iris.Map{"token": token})
	})

	// ---------- 监控 ----------

	app.Get("/monitor/stats", func(ctx iris.Context) {
		ok(ctx, service.GetMonitor().GetStats())
	})
}
