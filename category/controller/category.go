package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/latienda/backend/category/otel"
	"github.com/latienda/backend/category/pkg/request"
	"github.com/latienda/backend/category/service"
	inHttp "github.com/latienda/backend/internal/http"
	"github.com/latienda/backend/internal/log"
)

type CategoryController struct {
	service *service.CategoryService
}

func AttachCategoryController(
	router *mux.Router,
	service *service.CategoryService,
	auth mux.MiddlewareFunc,
) {
	controller := CategoryController{service: service}

	public := router.PathPrefix("/categories").Subrouter()
	public.HandleFunc("", controller.FindCategories).Methods(http.MethodGet)
	public.HandleFunc("/{categoryId}", controller.FindCategoryById).Methods(http.MethodGet)

	authed := router.PathPrefix("/categories").Subrouter()
	authed.Use(auth)
	authed.HandleFunc("", controller.CreateCategory).Methods(http.MethodPost)
	authed.HandleFunc("/{categoryId}", controller.UpdateCategory).Methods(http.MethodPut)
	authed.HandleFunc("/{categoryId}", controller.DeleteCategory).Methods(http.MethodDelete)
}

func (ctrl CategoryController) CreateCategory(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CategoryController CreateCategory")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CategoryController CreateCategory").Logger()
	c = logger.WithContext(c)

	reqBody := request.CreateCategory{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	category, err := ctrl.service.CreateCategory(c, reqBody)
	if err != nil {
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.ErrorStatusCode(err),
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusCreated,
		"message":    "created category",
		"data":       map[string]interface{}{"category": category},
	})
}

func (ctrl CategoryController) FindCategories(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CategoryController FindCategories")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CategoryController FindCategories").Logger()
	c = logger.WithContext(c)

	categories, err := ctrl.service.FindCategories(c)
	if err != nil {
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.ErrorStatusCode(err),
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found categories",
		"data":       map[string]interface{}{"categories": categories},
	})
}

func (ctrl CategoryController) FindCategoryById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CategoryController FindCategoryById")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CategoryController FindCategoryById").Logger()
	c = logger.WithContext(c)

	categoryID, err := uuid.Parse(mux.Vars(r)["categoryId"])
	if err != nil {
		err = fmt.Errorf("failed parsing categoryId with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	category, err := ctrl.service.FindCategoryById(c, categoryID)
	if err != nil {
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.ErrorStatusCode(err),
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "found category",
		"data":       map[string]interface{}{"category": category},
	})
}

func (ctrl CategoryController) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CategoryController UpdateCategory")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CategoryController UpdateCategory").Logger()
	c = logger.WithContext(c)

	categoryID, err := uuid.Parse(mux.Vars(r)["categoryId"])
	if err != nil {
		err = fmt.Errorf("failed parsing categoryId with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	reqBody := request.UpdateCategory{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	category, err := ctrl.service.UpdateCategory(c, categoryID, reqBody)
	if err != nil {
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.ErrorStatusCode(err),
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "updated category",
		"data":       map[string]interface{}{"category": category},
	})
}

func (ctrl CategoryController) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CategoryController DeleteCategory")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CategoryController DeleteCategory").Logger()
	c = logger.WithContext(c)

	categoryID, err := uuid.Parse(mux.Vars(r)["categoryId"])
	if err != nil {
		err = fmt.Errorf("failed parsing categoryId with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": http.StatusBadRequest,
			"message":    err.Error(),
		})
		return
	}

	err = ctrl.service.DeleteCategory(c, categoryID)
	if err != nil {
		inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
			"status":     "failed",
			"statusCode": inHttp.ErrorStatusCode(err),
			"message":    err.Error(),
		})
		return
	}

	inHttp.WriteJsonResponse(c, w, map[string]string{}, map[string]interface{}{
		"status":     "success",
		"statusCode": http.StatusOK,
		"message":    "deleted category",
	})
}
