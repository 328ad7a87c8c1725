package handlers

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
)

const maxLimit = 1000

var errInvalidPriority = errors.New("priority_filter must be an integer between 1 and 10")

func queryLimit(c *gin.Context, def int) (int, error) {
	v := strings.TrimSpace(c.Query("limit"))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > maxLimit {
		return 0, fmt.Errorf("limit must be an integer between 1 and %d", maxLimit)
	}
	return n, nil
}

func queryFloat(c *gin.Context, key string, def, min, max float64) (float64, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || f < min || f > max {
		return 0, fmt.Errorf("%s must be a number between %g and %g", key, min, max)
	}
	return f, nil
}
