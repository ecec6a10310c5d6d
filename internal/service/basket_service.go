package service

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tavolo-next/internal/logger"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"
)

const maxBasketQuantity = 50

// BasketItemDetail 购物篮项详情（用于响应）
type BasketItemDetail struct {
	MenuItemID          uint             `json:"menu_item_id"`
	VariationCode       string           `json:"variation_code,omitempty"`
	VariationName       string           `json:"variation_name,omitempty"`
	Quantity            int              `json:"quantity"`
	SpecialInstructions string           `json:"special_instructions,omitempty"`
	UnitPrice           models.Money     `json:"unit_price"`
	LineTotal           models.Money     `json:"line_total"`
	MenuItem            *models.MenuItem `json:"menu_item"`
}

// UpsertBasketItemInput 购物篮更新输入
type UpsertBasketItemInput struct {
	UserID              uint
	MenuItemID          uint
	VariationCode       string
	Quantity            int
	SpecialInstructions string
}

// BasketCheckoutInput 购物篮下单输入
type BasketCheckoutInput struct {
	UserID             uint
	Type               models.OrderType
	TableNumber        *int
	CustomerEmail      string
	DeliveryAddress    string
	Tip                decimal.Decimal
	DiscountPercentage decimal.Decimal
}

// BasketService 购物篮服务
type BasketService struct {
	basketRepo   repository.BasketRepository
	menuItemRepo repository.MenuItemRepository
	orderService *OrderService
}

// NewBasketService 创建购物篮服务
func NewBasketService(basketRepo repository.BasketRepository, menuItemRepo repository.MenuItemRepository, orderService *OrderService) *BasketService {
	return &BasketService{
		basketRepo:   basketRepo,
		menuItemRepo: menuItemRepo,
		orderService: orderService,
	}
}

// ListByUser 获取顾客购物篮，顺带清理已下架的菜品
func (s *BasketService) ListByUser(userID uint) ([]BasketItemDetail, error) {
	if userID == 0 {
		return nil, ErrBasketItemInvalid
	}
	items, err := s.basketRepo.ListByUser(userID)
	if err != nil {
		return nil, err
	}
	details := make([]BasketItemDetail, 0, len(items))
	for _, item := range items {
		menuItem := item.MenuItem
		if menuItem == nil || menuItem.ID == 0 {
			m, err := s.menuItemRepo.GetByID(item.MenuItemID)
			if err != nil {
				return nil, err
			}
			menuItem = m
		}
		if menuItem == nil || !menuItem.IsAvailable {
			_ = s.basketRepo.DeleteByUserAndItem(userID, item.MenuItemID, item.VariationCode)
			continue
		}

		unitPrice := menuItem.PriceAmount
		variationName := ""
		if code := strings.TrimSpace(item.VariationCode); code != "" {
			variation := findVariation(menuItem.Variations, code)
			if variation == nil || !variation.IsAvailable {
				_ = s.basketRepo.DeleteByUserAndItem(userID, item.MenuItemID, item.VariationCode)
				continue
			}
			unitPrice = variation.PriceAmount
			variationName = variation.NameJSON.Localized()
		}

		lineTotal := unitPrice.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		details = append(details, BasketItemDetail{
			MenuItemID:          item.MenuItemID,
			VariationCode:       item.VariationCode,
			VariationName:       variationName,
			Quantity:            item.Quantity,
			SpecialInstructions: item.SpecialInstructions,
			UnitPrice:           unitPrice,
			LineTotal:           models.NewMoneyFromDecimal(lineTotal),
			MenuItem:            menuItem,
		})
	}
	return details, nil
}

// UpsertItem 添加或更新购物篮项
func (s *BasketService) UpsertItem(input UpsertBasketItemInput) error {
	if input.UserID == 0 || input.MenuItemID == 0 || input.Quantity <= 0 || input.Quantity > maxBasketQuantity {
		return ErrBasketItemInvalid
	}
	menuItem, err := s.menuItemRepo.GetByID(input.MenuItemID)
	if err != nil {
		return err
	}
	if menuItem == nil || !menuItem.IsAvailable {
		return ErrMenuItemUnavailable
	}
	code := strings.TrimSpace(input.VariationCode)
	if code != "" {
		variation := findVariation(menuItem.Variations, code)
		if variation == nil || !variation.IsAvailable {
			return ErrVariationNotFound
		}
	}

	return s.basketRepo.Upsert(&models.BasketItem{
		UserID:              input.UserID,
		MenuItemID:          input.MenuItemID,
		VariationCode:       code,
		Quantity:            input.Quantity,
		SpecialInstructions: strings.TrimSpace(input.SpecialInstructions),
	})
}

// RemoveItem 删除购物篮项
func (s *BasketService) RemoveItem(userID, menuItemID uint, variationCode string) error {
	if userID == 0 || menuItemID == 0 {
		return ErrBasketItemInvalid
	}
	return s.basketRepo.DeleteByUserAndItem(userID, menuItemID, strings.TrimSpace(variationCode))
}

// Clear 清空购物篮
func (s *BasketService) Clear(userID uint) error {
	if userID == 0 {
		return ErrBasketItemInvalid
	}
	return s.basketRepo.ClearByUser(userID)
}

// Checkout 将购物篮转为订单，成功后清空购物篮
func (s *BasketService) Checkout(input BasketCheckoutInput) (*models.Order, error) {
	if input.UserID == 0 {
		return nil, ErrBasketItemInvalid
	}
	items, err := s.basketRepo.ListByUser(input.UserID)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrBasketEmpty
	}

	orderItems := make([]CreateOrderItem, 0, len(items))
	for _, item := range items {
		orderItems = append(orderItems, CreateOrderItem{
			MenuItemID:          item.MenuItemID,
			VariationCode:       item.VariationCode,
			Quantity:            item.Quantity,
			SpecialInstructions: item.SpecialInstructions,
		})
	}

	order, err := s.orderService.CreateOrder(CreateOrderInput{
		UserID:             input.UserID,
		Type:               input.Type,
		TableNumber:        input.TableNumber,
		CustomerEmail:      input.CustomerEmail,
		DeliveryAddress:    input.DeliveryAddress,
		Tip:                input.Tip,
		DiscountPercentage: input.DiscountPercentage,
		Items:              orderItems,
		Actor:              models.ActorCustomer,
	})
	if err != nil {
		return nil, err
	}

	if err := s.basketRepo.ClearByUser(input.UserID); err != nil {
		logger.Warnw("basket_clear_after_checkout_failed", "user_id", input.UserID, "order_id", order.ID, "error", err)
	}
	return order, nil
}

func findVariation(variations []models.MenuItemVariation, code string) *models.MenuItemVariation {
	for i := range variations {
		if variations[i].Code == code {
			return &variations[i]
		}
	}
	return nil
}
