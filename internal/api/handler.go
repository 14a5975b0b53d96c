package api

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"

	"recipebook/internal/images"
	"recipebook/internal/providers"
	"recipebook/internal/recipe"
)

// providerTimeout bounds every call that reaches the LLM provider.
const providerTimeout = 45 * time.Second

const maxRecipes = 6

// Kitchen defines the recipe generation operations the handlers need.
type Kitchen interface {
	GenerateRecipes(ctx context.Context, ingredients []string) ([]recipe.Recipe, error)
	DetailedRecipe(ctx context.Context, name string, ingredients []string) (string, error)
	NutritionAnalysis(ctx context.Context, name string, ingredients []string) (string, error)
	Provider() providers.Provider
}

// ImageStore defines the image operations the handlers need.
type ImageStore interface {
	Path(filename string) (string, error)
	Illustrate(ctx context.Context, gen images.Generator, recipeNames []string) map[string]string
	Save(recipeName string, data []byte) (string, error)
	Thumbnail(filename string, width uint) ([]byte, error)
}

// Handler handles HTTP requests. Generator is optional; without it only
// images already on disk are linked.
type Handler struct {
	Kitchen   Kitchen
	Images    ImageStore
	Generator images.Generator
	PublicURL string
	Logger    *slog.Logger
}

// NewHandler creates a new Handler. publicURL prefixes image links and may
// be empty for links relative to the API host.
func NewHandler(kitchen Kitchen, imageStore ImageStore, publicURL string, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		Kitchen:   kitchen,
		Images:    imageStore,
		PublicURL: strings.TrimSuffix(publicURL, "/"),
		Logger:    logger,
	}
}

type generateRequest struct {
	Ingredients []string `json:"ingredients"`
}

type recipeRequest struct {
	RecipeName  string   `json:"recipeName"`
	Ingredients []string `json:"ingredients"`
}

// Register mounts the handlers on r.
func (h *Handler) Register(r gin.IRouter) {
	r.GET("/health", h.Health)
	r.GET("/images/:filename", h.Image)
	r.HEAD("/images/:filename", h.Image)

	api := r.Group("/api")
	api.POST("/generate-recipes", h.GenerateRecipes)
	api.POST("/recipe-details", h.RecipeDetails)
	api.POST("/nutrition-info", h.NutritionInfo)
	api.POST("/recipe-image", h.UploadImage)
}

// GenerateRecipes validates the ingredient list and returns recipe ideas.
func (h *Handler) GenerateRecipes(c *gin.Context) {
	var req generateRequest
	_ = c.ShouldBindJSON(&req)
	ingredients := lo.Compact(lo.Map(req.Ingredients, func(s string, _ int) string {
		return strings.TrimSpace(s)
	}))
	if len(ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No ingredients provided"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), providerTimeout)
	defer cancel()

	recipes, err := h.Kitchen.GenerateRecipes(ctx, ingredients)
	if err != nil || len(recipes) == 0 {
		h.Logger.Error("failed to generate recipes", "ingredients", ingredients, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to validate ingredients or generate recipes"})
		return
	}
	if len(recipes) > maxRecipes {
		recipes = recipes[:maxRecipes]
	}

	if h.Images != nil {
		imgCtx, cancel := context.WithTimeout(c.Request.Context(), providerTimeout)
		defer cancel()

		names := lo.Map(recipes, func(r recipe.Recipe, _ int) string { return r.Name })
		filenames := h.Images.Illustrate(imgCtx, h.Generator, names)
		for i := range recipes {
			if filename, ok := filenames[recipes[i].Name]; ok {
				recipes[i].ImageURL = h.PublicURL + "/images/" + filename
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// RecipeDetails returns the detailed recipe and its nutrition analysis.
// A failed nutrition analysis leaves the field empty.
func (h *Handler) RecipeDetails(c *gin.Context) {
	var req recipeRequest
	_ = c.ShouldBindJSON(&req)
	name := strings.TrimSpace(req.RecipeName)
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No recipe name provided"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), providerTimeout)
	defer cancel()

	nutrition := make(chan string, 1)
	go func() {
		text, err := h.Kitchen.NutritionAnalysis(ctx, name, req.Ingredients)
		if err != nil {
			h.Logger.Warn("failed to analyse nutrition", "recipe", name, "err", err)
		}
		nutrition <- text
	}()

	details, err := h.Kitchen.DetailedRecipe(ctx, name, req.Ingredients)
	analysis := <-nutrition
	if err != nil || details == "" {
		h.Logger.Error("failed to generate recipe details", "recipe", name, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate recipe details"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recipe": details, "nutritionAnalysis": analysis})
}

// NutritionInfo returns the nutrition analysis for a recipe.
func (h *Handler) NutritionInfo(c *gin.Context) {
	var req recipeRequest
	_ = c.ShouldBindJSON(&req)

	ctx, cancel := context.WithTimeout(c.Request.Context(), providerTimeout)
	defer cancel()

	analysis, err := h.Kitchen.NutritionAnalysis(ctx, strings.TrimSpace(req.RecipeName), req.Ingredients)
	if err != nil || analysis == "" {
		h.Logger.Error("failed to generate nutrition information", "recipe", req.RecipeName, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate nutrition information"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"nutritionInfo": analysis})
}

// Image serves a stored recipe image. With ?width=N the image is scaled.
func (h *Handler) Image(c *gin.Context) {
	filename := c.Param("filename")
	path, err := h.Images.Path(filename)
	if err != nil {
		c.String(http.StatusBadRequest, "Invalid file format")
		return
	}

	if w := c.Query("width"); w != "" {
		width, err := strconv.ParseUint(w, 10, 32)
		if err != nil || width == 0 {
			c.String(http.StatusBadRequest, "Invalid width")
			return
		}
		data, err := h.Images.Thumbnail(filename, uint(width))
		if errors.Is(err, images.ErrNotFound) {
			c.String(http.StatusNotFound, "Image not found")
			return
		}
		if err != nil {
			h.Logger.Error("failed to scale image", "file", filename, "err", err)
			c.String(http.StatusInternalServerError, "Failed to scale image")
			return
		}
		c.Data(http.StatusOK, "image/png", data)
		return
	}

	if info, err := os.Stat(path); err != nil || info.IsDir() {
		c.String(http.StatusNotFound, "Image not found")
		return
	}
	c.Header("Content-Type", "image/png")
	c.File(path)
}

// UploadImage stores a picture for a recipe. The form carries the recipe
// name in "recipeName" and the picture in "file".
func (h *Handler) UploadImage(c *gin.Context) {
	name := strings.TrimSpace(c.PostForm("recipeName"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No recipe name provided"})
		return
	}

	if recipe.SafeImageName(name) == ".png" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recipe name"})
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "get form err: " + err.Error()})
		return
	}

	allowedExtensions := map[string]bool{
		".jpeg": true,
		".jpg":  true,
		".png":  true,
	}
	extension := strings.ToLower(filepath.Ext(file.Filename))
	if !allowedExtensions[extension] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type. Only JPEG, JPG, and PNG images are allowed."})
		return
	}

	data, err := readFormFile(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	filename, err := h.Images.Save(name, data)
	if err != nil {
		h.Logger.Error("failed to save recipe image", "recipe", name, "err", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to save image"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"imageUrl": h.PublicURL + "/images/" + filename})
}

// Health reports whether an LLM provider is configured.
func (h *Handler) Health(c *gin.Context) {
	if h.Kitchen == nil || h.Kitchen.Provider() == nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status": "unhealthy",
			"error":  "LLM provider not configured",
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"message":  "Service is running",
		"provider": h.Kitchen.Provider().Name(),
	})
}

func readFormFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, errors.New("open file err: " + err.Error())
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, errors.New("read image err: " + err.Error())
	}
	return data, nil
}
