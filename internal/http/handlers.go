package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"qrmenu/internal/service"
)

// Restaurant handlers

// @Summary List active restaurants
// @Tags restaurants
// @Produce json
// @Success 200 {object} dataResponse{data=[]domain.Restaurant}
// @Failure 500 {object} errorResponse
// @Router /restaurants [get]
func (s *Server) listRestaurants(c *gin.Context) {
	list, err := s.deps.Restaurants.List(c)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, list)
}

// @Summary Create restaurant
// @Tags restaurants
// @Accept json
// @Produce json
// @Param input body service.CreateRestaurantInput true "Restaurant"
// @Success 201 {object} dataResponse{data=domain.Restaurant}
// @Failure 400 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /restaurants [post]
func (s *Server) createRestaurant(c *gin.Context) {
	var req service.CreateRestaurantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	r, err := s.deps.Restaurants.Create(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, r)
}

// @Summary Get restaurant tree by slug
// @Description Active categories with available items; preview=true keeps unavailable items.
// @Tags restaurants
// @Produce json
// @Param slug path string true "Restaurant slug"
// @Param preview query bool false "Admin preview"
// @Success 200 {object} dataResponse{data=domain.RestaurantTree}
// @Failure 404 {object} errorResponse
// @Router /restaurants/{slug} [get]
func (s *Server) getRestaurant(c *gin.Context) {
	preview, _ := strconv.ParseBool(c.Query("preview"))
	tree, err := s.deps.Restaurants.GetBySlug(c, c.Param("slug"), preview)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, tree)
}

// @Summary Public menu link
// @Tags restaurants
// @Produce json
// @Param slug path string true "Restaurant slug"
// @Success 200 {object} dataResponse{data=service.MenuLink}
// @Failure 404 {object} errorResponse
// @Router /restaurants/{slug}/link [get]
func (s *Server) restaurantLink(c *gin.Context) {
	link, err := s.deps.Restaurants.Link(c, c.Param("slug"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, link)
}

// @Summary Update restaurant
// @Description Only keys present in the body are written; slug cannot change.
// @Tags restaurants
// @Accept json
// @Produce json
// @Param id path string true "Restaurant ID"
// @Param input body service.UpdateRestaurantInput true "Fields to change"
// @Success 200 {object} dataResponse{data=domain.Restaurant}
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /restaurants/{id} [patch]
func (s *Server) updateRestaurant(c *gin.Context) {
	var req service.UpdateRestaurantInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	r, err := s.deps.Restaurants.Update(c, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, r)
}

// @Summary Delete restaurant with its categories and items
// @Tags restaurants
// @Produce json
// @Param id path string true "Restaurant ID"
// @Success 200 {object} messageResponse
// @Failure 404 {object} errorResponse
// @Router /restaurants/{id} [delete]
func (s *Server) deleteRestaurant(c *gin.Context) {
	if err := s.deps.Restaurants.Delete(c, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Restaurant deleted")
}

// Category handlers

// @Summary List categories
// @Tags categories
// @Produce json
// @Param restaurantId query string false "Restaurant ID"
// @Success 200 {object} dataResponse{data=[]domain.CategoryListing}
// @Router /categories [get]
func (s *Server) listCategories(c *gin.Context) {
	list, err := s.deps.Categories.List(c, c.Query("restaurantId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, list)
}

// @Summary Create category
// @Tags categories
// @Accept json
// @Produce json
// @Param input body service.CreateCategoryInput true "Category"
// @Success 201 {object} dataResponse{data=domain.Category}
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /categories [post]
func (s *Server) createCategory(c *gin.Context) {
	var req service.CreateCategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	cat, err := s.deps.Categories.Create(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, cat)
}

// @Summary Get category
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} dataResponse{data=domain.Category}
// @Failure 404 {object} errorResponse
// @Router /categories/{id} [get]
func (s *Server) getCategory(c *gin.Context) {
	cat, err := s.deps.Categories.Get(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, cat)
}

// @Summary Update category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path string true "Category ID"
// @Param input body service.UpdateCategoryInput true "Fields to change"
// @Success 200 {object} dataResponse{data=domain.Category}
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /categories/{id} [patch]
func (s *Server) updateCategory(c *gin.Context) {
	var req service.UpdateCategoryInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	cat, err := s.deps.Categories.Update(c, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, cat)
}

// @Summary Delete category
// @Description Cascades to items or fails with 409, depending on DELETE_POLICY.
// @Tags categories
// @Produce json
// @Param id path string true "Category ID"
// @Success 200 {object} messageResponse
// @Failure 404 {object} errorResponse
// @Failure 409 {object} errorResponse
// @Router /categories/{id} [delete]
func (s *Server) deleteCategory(c *gin.Context) {
	if err := s.deps.Categories.Delete(c, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Category deleted")
}

// Item handlers

// @Summary List items
// @Tags items
// @Produce json
// @Param categoryId query string false "Category ID"
// @Success 200 {object} dataResponse{data=[]domain.ItemListing}
// @Router /items [get]
func (s *Server) listItems(c *gin.Context) {
	list, err := s.deps.Items.List(c, c.Query("categoryId"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, list)
}

// @Summary Create item
// @Description price is required; 0 is valid and numeric strings are accepted.
// @Tags items
// @Accept json
// @Produce json
// @Param input body service.CreateItemInput true "Item"
// @Success 201 {object} dataResponse{data=domain.Item}
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /items [post]
func (s *Server) createItem(c *gin.Context) {
	var req service.CreateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	it, err := s.deps.Items.Create(c, req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, it)
}

// @Summary Get item
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} dataResponse{data=domain.ItemListing}
// @Failure 404 {object} errorResponse
// @Router /items/{id} [get]
func (s *Server) getItem(c *gin.Context) {
	it, err := s.deps.Items.Get(c, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, it)
}

// @Summary Update item
// @Tags items
// @Accept json
// @Produce json
// @Param id path string true "Item ID"
// @Param input body service.UpdateItemInput true "Fields to change"
// @Success 200 {object} dataResponse{data=domain.Item}
// @Failure 400 {object} errorResponse
// @Failure 404 {object} errorResponse
// @Router /items/{id} [patch]
func (s *Server) updateItem(c *gin.Context) {
	var req service.UpdateItemInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badJSON(c, err)
		return
	}
	it, err := s.deps.Items.Update(c, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	respond(c, http.StatusOK, it)
}

// @Summary Delete item
// @Tags items
// @Produce json
// @Param id path string true "Item ID"
// @Success 200 {object} messageResponse
// @Failure 404 {object} errorResponse
// @Router /items/{id} [delete]
func (s *Server) deleteItem(c *gin.Context) {
	if err := s.deps.Items.Delete(c, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	respondMessage(c, "Item deleted")
}
