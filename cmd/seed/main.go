package main

import (
	"fmt"

	"github.com/tavolo-next/internal/config"
	"github.com/tavolo-next/internal/constants"
	"github.com/tavolo-next/internal/logger"
	"github.com/tavolo-next/internal/models"

	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	// 添加菜单分类
	categories := []models.Category{
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "前菜",
				"en-US": "Starters",
			}),
			Slug:      "starters",
			SortOrder: 400,
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "主菜",
				"en-US": "Mains",
			}),
			Slug:      "mains",
			SortOrder: 300,
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "甜品",
				"en-US": "Desserts",
			}),
			Slug:      "desserts",
			SortOrder: 200,
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "饮品",
				"en-US": "Drinks",
			}),
			Slug:      "drinks",
			SortOrder: 100,
		},
	}

	for _, cat := range categories {
		var existing models.Category
		if err := models.DB.Where("slug = ?", cat.Slug).First(&existing).Error; err != nil {
			// 不存在则创建
			if err := models.DB.Create(&cat).Error; err != nil {
				stdLog.Printf("Failed to create category %s: %v", cat.Slug, err)
			} else {
				stdLog.Printf("Created category: %s", cat.Slug)
			}
		} else {
			stdLog.Printf("Category already exists: %s", cat.Slug)
		}
	}

	// 获取分类ID
	categoryIDs := map[string]uint{}
	var categoryList []models.Category
	if err := models.DB.Where("slug IN ?", []string{"starters", "mains", "desserts", "drinks"}).Find(&categoryList).Error; err != nil {
		stdLog.Printf("Failed to load categories: %v", err)
	}
	for _, cat := range categoryList {
		categoryIDs[cat.Slug] = cat.ID
	}
	startersID := categoryIDs["starters"]
	mainsID := categoryIDs["mains"]
	dessertsID := categoryIDs["desserts"]
	drinksID := categoryIDs["drinks"]

	// 添加菜品
	menuItems := []models.MenuItem{
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "蒜香面包",
				"en-US": "Garlic Bread",
			}),
			Slug: "garlic-bread",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "现烤面包配蒜香黄油与欧芹",
				"en-US": "Fresh baked bread with garlic butter and parsley",
			}),
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(4.50)),
			CategoryID:  startersID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1573140401552-3fab0b24306f?w=800",
			}),
			Tags:        models.StringArray([]string{"vegetarian"}),
			Allergens:   models.StringArray([]string{"gluten", "milk"}),
			IsAvailable: true,
			SortOrder:   400,
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "番茄浓汤",
				"en-US": "Tomato Soup",
			}),
			Slug: "tomato-soup",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "慢炖番茄浓汤，配罗勒与奶油",
				"en-US": "Slow cooked tomato soup with basil and cream",
			}),
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(5.90)),
			CategoryID:  startersID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1547592166-23ac45744acd?w=800",
			}),
			Tags:        models.StringArray([]string{"vegetarian"}),
			Allergens:   models.StringArray([]string{"milk"}),
			IsAvailable: true,
			SortOrder:   390,
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "玛格丽特披萨",
				"en-US": "Pizza Margherita",
			}),
			Slug: "pizza-margherita",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "番茄、马苏里拉与新鲜罗勒，柴火窑炉烤制",
				"en-US": "Tomato, mozzarella and fresh basil, wood fired",
			}),
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(9.50)),
			CategoryID:  mainsID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1574071318508-1cdbab80d002?w=800",
			}),
			Tags:        models.StringArray([]string{"vegetarian", "popular"}),
			Allergens:   models.StringArray([]string{"gluten", "milk"}),
			IsAvailable: true,
			SortOrder:   300,
			Variations: []models.MenuItemVariation{
				{
					Code: "regular",
					NameJSON: models.JSON(map[string]interface{}{
						"zh-CN": "标准（30cm）",
						"en-US": "Regular (30cm)",
					}),
					PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(9.50)),
					IsAvailable: true,
					SortOrder:   200,
				},
				{
					Code: "large",
					NameJSON: models.JSON(map[string]interface{}{
						"zh-CN": "大份（40cm）",
						"en-US": "Large (40cm)",
					}),
					PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(13.50)),
					IsAvailable: true,
					SortOrder:   100,
				},
			},
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "烤三文鱼配时蔬",
				"en-US": "Grilled Salmon with Vegetables",
			}),
			Slug: "grilled-salmon",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "挪威三文鱼配当季时蔬与柠檬黄油汁",
				"en-US": "Norwegian salmon with seasonal vegetables and lemon butter sauce",
			}),
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(18.90)),
			CategoryID:  mainsID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1467003909585-2f8a72700288?w=800",
			}),
			Tags:        models.StringArray([]string{"popular"}),
			Allergens:   models.StringArray([]string{"fish", "milk"}),
			IsAvailable: true,
			SortOrder:   290,
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "经典牛肉汉堡",
				"en-US": "Classic Beef Burger",
			}),
			Slug: "beef-burger",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "手打牛肉饼、车打芝士与自制酱汁，配薯条",
				"en-US": "Hand pressed beef patty, cheddar and house sauce, served with fries",
			}),
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.90)),
			CategoryID:  mainsID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1568901346375-23c9450c58cd?w=800",
			}),
			Tags:        models.StringArray([]string{"popular"}),
			Allergens:   models.StringArray([]string{"gluten", "milk", "egg"}),
			IsAvailable: true,
			SortOrder:   280,
			Variations: []models.MenuItemVariation{
				{
					Code: "single",
					NameJSON: models.JSON(map[string]interface{}{
						"zh-CN": "单层",
						"en-US": "Single",
					}),
					PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(12.90)),
					IsAvailable: true,
					SortOrder:   200,
				},
				{
					Code: "double",
					NameJSON: models.JSON(map[string]interface{}{
						"zh-CN": "双层",
						"en-US": "Double",
					}),
					PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(15.90)),
					IsAvailable: true,
					SortOrder:   100,
				},
			},
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "提拉米苏",
				"en-US": "Tiramisu",
			}),
			Slug: "tiramisu",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "经典意式甜品，马斯卡彭奶酪与浓缩咖啡",
				"en-US": "Classic Italian dessert with mascarpone and espresso",
			}),
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(6.50)),
			CategoryID:  dessertsID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1571877227200-a0d98ea607e9?w=800",
			}),
			Tags:        models.StringArray([]string{"vegetarian"}),
			Allergens:   models.StringArray([]string{"gluten", "milk", "egg"}),
			IsAvailable: true,
			SortOrder:   200,
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "鲜榨橙汁",
				"en-US": "Fresh Orange Juice",
			}),
			Slug: "orange-juice",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "现点现榨，不加糖",
				"en-US": "Squeezed to order, no added sugar",
			}),
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(3.90)),
			CategoryID:  drinksID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1600271886742-f049cd451bba?w=800",
			}),
			Tags:        models.StringArray([]string{"vegan"}),
			IsAvailable: true,
			SortOrder:   100,
			Variations: []models.MenuItemVariation{
				{
					Code: "small",
					NameJSON: models.JSON(map[string]interface{}{
						"zh-CN": "小杯（250ml）",
						"en-US": "Small (250ml)",
					}),
					PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(3.90)),
					IsAvailable: true,
					SortOrder:   200,
				},
				{
					Code: "large",
					NameJSON: models.JSON(map[string]interface{}{
						"zh-CN": "大杯（400ml）",
						"en-US": "Large (400ml)",
					}),
					PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(5.50)),
					IsAvailable: true,
					SortOrder:   100,
				},
			},
		},
		{
			NameJSON: models.JSON(map[string]interface{}{
				"zh-CN": "当日特供（暂停供应演示）",
				"en-US": "Daily Special (Unavailable Demo)",
			}),
			Slug: "daily-special",
			DescriptionJSON: models.JSON(map[string]interface{}{
				"zh-CN": "用于前台停售徽章与禁点按钮展示。",
				"en-US": "For the sold-out badge and disabled ordering demo.",
			}),
			PriceAmount: models.NewMoneyFromDecimal(decimal.NewFromFloat(16.50)),
			CategoryID:  mainsID,
			Images: models.StringArray([]string{
				"https://images.unsplash.com/photo-1504674900247-0877df9cc836?w=800",
			}),
			Tags:        models.StringArray([]string{"special"}),
			IsAvailable: false,
			SortOrder:   270,
		},
	}

	for _, item := range menuItems {
		if item.CategoryID == 0 {
			stdLog.Printf("Skip menu item %s: category_id missing", item.Slug)
			continue
		}
		var existing models.MenuItem
		if err := models.DB.Where("slug = ?", item.Slug).First(&existing).Error; err != nil {
			if err := models.DB.Create(&item).Error; err != nil {
				stdLog.Printf("Failed to create menu item %s: %v", item.Slug, err)
			} else {
				stdLog.Printf("Created menu item: %s", item.Slug)
			}
		} else {
			existing.NameJSON = item.NameJSON
			existing.DescriptionJSON = item.DescriptionJSON
			existing.PriceAmount = item.PriceAmount
			existing.CategoryID = item.CategoryID
			existing.Images = item.Images
			existing.Tags = item.Tags
			existing.Allergens = item.Allergens
			existing.IsAvailable = item.IsAvailable
			existing.SortOrder = item.SortOrder
			if err := models.DB.Save(&existing).Error; err != nil {
				stdLog.Printf("Failed to update menu item %s: %v", item.Slug, err)
			} else {
				stdLog.Printf("Updated menu item: %s", item.Slug)
			}
			for _, variation := range item.Variations {
				var existingVar models.MenuItemVariation
				if err := models.DB.Where("menu_item_id = ? AND code = ?", existing.ID, variation.Code).First(&existingVar).Error; err != nil {
					variation.MenuItemID = existing.ID
					if err := models.DB.Create(&variation).Error; err != nil {
						stdLog.Printf("Failed to create variation %s/%s: %v", item.Slug, variation.Code, err)
					}
					continue
				}
				existingVar.NameJSON = variation.NameJSON
				existingVar.PriceAmount = variation.PriceAmount
				existingVar.IsAvailable = variation.IsAvailable
				existingVar.SortOrder = variation.SortOrder
				if err := models.DB.Save(&existingVar).Error; err != nil {
					stdLog.Printf("Failed to update variation %s/%s: %v", item.Slug, variation.Code, err)
				}
			}
		}
	}

	// 添加餐桌
	tables := []models.DiningTable{
		{Number: 1, Seats: 2, Zone: "window", Status: constants.TableStatusAvailable},
		{Number: 2, Seats: 2, Zone: "window", Status: constants.TableStatusAvailable},
		{Number: 3, Seats: 4, Zone: "hall", Status: constants.TableStatusAvailable},
		{Number: 4, Seats: 4, Zone: "hall", Status: constants.TableStatusAvailable},
		{Number: 5, Seats: 6, Zone: "hall", Status: constants.TableStatusAvailable},
		{Number: 6, Seats: 8, Zone: "private", Status: constants.TableStatusAvailable},
		{Number: 7, Seats: 4, Zone: "terrace", Status: constants.TableStatusUnavailable},
		{Number: 8, Seats: 4, Zone: "terrace", Status: constants.TableStatusUnavailable},
	}

	for _, table := range tables {
		var existing models.DiningTable
		if err := models.DB.Where("number = ?", table.Number).First(&existing).Error; err != nil {
			if err := models.DB.Create(&table).Error; err != nil {
				stdLog.Printf("Failed to create table %d: %v", table.Number, err)
			} else {
				stdLog.Printf("Created table: %d (%s, %d seats)", table.Number, table.Zone, table.Seats)
			}
		} else {
			stdLog.Printf("Table already exists: %d", table.Number)
		}
	}

	// 添加演示员工账号（后厨与前厅）
	staffAccounts := []struct {
		Username string
		Password string
		Role     string
	}{
		{Username: "chef", Password: "chef12345", Role: constants.StaffRoleKitchen},
		{Username: "waiter", Password: "waiter12345", Role: constants.StaffRoleWaiter},
		{Username: "shiftlead", Password: "shiftlead12345", Role: constants.StaffRoleManager},
	}

	for _, account := range staffAccounts {
		var existing models.Admin
		if err := models.DB.Where("username = ?", account.Username).First(&existing).Error; err == nil {
			stdLog.Printf("Staff already exists: %s", account.Username)
			continue
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(account.Password), bcrypt.DefaultCost)
		if err != nil {
			stdLog.Printf("Failed to hash password for %s: %v", account.Username, err)
			continue
		}
		staff := models.Admin{
			Username:     account.Username,
			PasswordHash: string(hash),
			Role:         account.Role,
		}
		if err := models.DB.Create(&staff).Error; err != nil {
			stdLog.Printf("Failed to create staff %s: %v", account.Username, err)
		} else {
			stdLog.Printf("Created staff: %s (%s)", account.Username, account.Role)
		}
	}

	// 更新网站配置与下单配置
	settingSeeds := []struct {
		Key   string
		Value map[string]interface{}
	}{
		{
			Key: constants.SettingKeySiteConfig,
			Value: map[string]interface{}{
				"name":                             "Tavolo",
				constants.SettingFieldSiteCurrency: constants.SiteCurrencyDefault,
				"languages":                        constants.SupportedLocales,
				"contact": map[string]string{
					"phone": "+39 02 1234 5678",
					"email": "hello@tavolo.example",
				},
			},
		},
		{
			Key: constants.SettingKeyOrderConfig,
			Value: map[string]interface{}{
				constants.SettingFieldTaxRate:            10,
				constants.SettingFieldDeliveryFee:        3.5,
				constants.SettingFieldPrepTimeMinutes:    30,
				constants.SettingFieldDelayExpireMinutes: 15,
			},
		},
	}

	for _, seed := range settingSeeds {
		var setting models.Setting
		if err := models.DB.Where("key = ?", seed.Key).First(&setting).Error; err != nil {
			// 不存在则创建
			setting = models.Setting{
				Key:       seed.Key,
				ValueJSON: models.JSON(seed.Value),
			}
			if err := models.DB.Create(&setting).Error; err != nil {
				stdLog.Printf("Failed to create setting %s: %v", seed.Key, err)
			} else {
				stdLog.Printf("Created setting: %s", seed.Key)
			}
		} else {
			// 更新
			setting.ValueJSON = models.JSON(seed.Value)
			if err := models.DB.Save(&setting).Error; err != nil {
				stdLog.Printf("Failed to update setting %s: %v", seed.Key, err)
			} else {
				stdLog.Printf("Updated setting: %s", seed.Key)
			}
		}
	}

	fmt.Println("\n✅ Seed data created successfully!")
	fmt.Println("Summary:")
	fmt.Println("- 4 Categories")
	fmt.Println("- 8 Menu items (含规格与停售演示菜品)")
	fmt.Println("- 8 Dining tables")
	fmt.Println("- 3 Staff accounts (kitchen/waiter/manager)")
	fmt.Println("- Site and order configuration")
}
