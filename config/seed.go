package config

import (
	"log"

	"github.com/hvostov/inkline/models"
)

// SeedGroups creates the initial set of groups when the table is empty.
// Further groups are created by administrators through the API.
func SeedGroups() {
	var count int64
	DB().Model(&models.Group{}).Count(&count)
	if count > 0 {
		return
	}

	groups := []models.Group{
		{Title: "General", Slug: "general", Description: "Anything that fits nowhere else"},
		{Title: "Tech", Slug: "tech", Description: "Programming, hardware, and engineering notes"},
		{Title: "Life", Slug: "life", Description: "Everyday stories and experiences"},
		{Title: "Showcase", Slug: "showcase", Description: "Projects and work worth sharing"},
	}

	for _, g := range groups {
		if err := DB().Create(&g).Error; err != nil {
			log.Printf("failed to seed group %s: %v", g.Slug, err)
		}
	}
	log.Println("initial groups created")
}
