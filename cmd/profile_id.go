package cmd

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"tweetsweep/internal/domain"
)

func resolveProfileID(ctx context.Context, app *app, raw string) (domain.ProfileID, error) {
	requested := strings.TrimSpace(raw)
	if requested == "" || requested == "0" {
		return nextAvailableProfileID(ctx, app)
	}

	if n, err := strconv.Atoi(requested); err == nil && n <= 0 {
		return "", fmt.Errorf("profile must be a positive number or empty/0 for auto assignment")
	}

	return domain.ProfileID(requested), nil
}

func nextAvailableProfileID(ctx context.Context, app *app) (domain.ProfileID, error) {
	profiles, err := app.profiles.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list profiles for auto assignment: %w", err)
	}

	used := make(map[int]struct{}, len(profiles))
	for _, profile := range profiles {
		n, err := strconv.Atoi(string(profile.ID))
		if err != nil || n <= 0 {
			continue
		}
		used[n] = struct{}{}
	}

	for i := 1; ; i++ {
		if _, ok := used[i]; !ok {
			return domain.ProfileID(strconv.Itoa(i)), nil
		}
	}
}
