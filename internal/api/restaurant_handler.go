package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type RestaurantHandler struct {
	restaurantService RestaurantService
}

func NewRestaurantHandler(restaurantService RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurantService: restaurantService}
}

// GetRestaurants --> GET /api/restaurants
func (h *RestaurantHandler) GetRestaurants(c echo.Context) error {
	restaurants, err := h.restaurantService.List(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, restaurants)
}

// GetRestaurant --> GET /api/restaurants/:id
func (h *RestaurantHandler) GetRestaurant(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, message("invalid restaurant id"))
	}

	restaurant, err := h.restaurantService.Get(c.Request().Context(), id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, restaurant)
}

// GetAvailability --> GET /api/restaurants/:id/availability?date=YYYY-MM-DD
func (h *RestaurantHandler) GetAvailability(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, message("invalid restaurant id"))
	}
	date := c.QueryParam("date")
	if date == "" {
		return c.JSON(http.StatusBadRequest, message("date is required"))
	}

	availability, err := h.restaurantService.Availability(c.Request().Context(), id, date)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, availability)
}

func parseID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, strconv.ErrSyntax
	}
	return id, nil
}
