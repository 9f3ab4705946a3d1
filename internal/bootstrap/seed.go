package bootstrap

import (
	"log"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/huxiangculture/platform/internal/model"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.CulturalResource{},
		&model.CommunityPost{},
		&model.Comment{},
		&model.PostLike{},
	)
}

// SeedAdminUser creates the default admin account unless one exists.
func SeedAdminUser(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.User{}).
		Where("username = ?", "admin").
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Println("Admin user already exists, skipping seed")
		return nil
	}

	hashedPasswordBytes, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := model.User{
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: string(hashedPasswordBytes),
		Role:         model.RoleAdmin,
	}

	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Println("Admin user created")
	return nil
}

// SeedSampleContent inserts a starter cultural resource and community post so
// a fresh dev database is browsable.
func SeedSampleContent(db *gorm.DB) error {
	var count int64
	if err := db.Model(&model.CulturalResource{}).
		Where("title = ?", "湖湘文化简介").
		Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		resource := model.CulturalResource{
			Title:       "湖湘文化简介",
			Description: "湖湘文化是湖南地区特有的地域文化，具有深厚的历史底蕴。",
			Content:     "湖湘文化是指湖南地区特有的地域文化，源远流长，博大精深...",
			Type:        "history",
			Category:    "introduction",
			Tags:        "湖湘,湖南,文化,历史",
			Author:      "系统管理员",
			Status:      "published",
			Priority:    1,
		}
		if err := db.Create(&resource).Error; err != nil {
			return err
		}
	}

	if err := db.Model(&model.CommunityPost{}).
		Where("title = ?", "欢迎来到湖湘文化社区").
		Count(&count).Error; err != nil {
		return err
	}

	if count == 0 {
		var author model.User
		if err := db.Order("id").First(&author).Error; err != nil {
			return err
		}

		post := model.CommunityPost{
			Title:    "欢迎来到湖湘文化社区",
			Content:  "欢迎大家在这里分享关于湖湘文化的见解、故事和资源。让我们一起探讨湖湘文化的魅力！",
			AuthorID: author.ID,
			Category: "文化讨论",
			Status:   model.PostStatusPublished,
		}
		if err := db.Create(&post).Error; err != nil {
			return err
		}
	}

	return nil
}
