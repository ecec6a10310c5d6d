package service

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/tavolo-next/internal/constants"
	"github.com/tavolo-next/internal/models"
	"github.com/tavolo-next/internal/repository"

	"github.com/shopspring/decimal"
)

// SettingService 设置业务服务
type SettingService struct {
	repo repository.SettingRepository
}

// NewSettingService 创建设置服务
func NewSettingService(repo repository.SettingRepository) *SettingService {
	return &SettingService{repo: repo}
}

// GetConfig 获取站点配置（合并默认值）
func (s *SettingService) GetConfig(defaults map[string]interface{}) (map[string]interface{}, error) {
	data := make(map[string]interface{})
	for k, v := range defaults {
		data[k] = v
	}

	setting, err := s.repo.GetByKey(constants.SettingKeySiteConfig)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return data, nil
	}

	for k, v := range setting.ValueJSON {
		data[k] = v
	}
	return data, nil
}

// GetByKey 获取设置
func (s *SettingService) GetByKey(key string) (models.JSON, error) {
	if s == nil {
		return nil, nil
	}
	setting, err := s.repo.GetByKey(key)
	if err != nil {
		return nil, err
	}
	if setting == nil {
		return nil, nil
	}
	return setting.ValueJSON, nil
}

// Update 设置值
func (s *SettingService) Update(key string, value map[string]interface{}) (models.JSON, error) {
	setting, err := s.repo.Upsert(key, value)
	if err != nil {
		return nil, err
	}
	return setting.ValueJSON, nil
}

// GetSiteCurrency 获取站点币种
func (s *SettingService) GetSiteCurrency() string {
	value, err := s.GetByKey(constants.SettingKeySiteConfig)
	if err != nil || value == nil {
		return constants.SiteCurrencyDefault
	}
	currency := strings.ToUpper(readString(value, constants.SettingFieldSiteCurrency, ""))
	if currency == "" {
		return constants.SiteCurrencyDefault
	}
	return currency
}

// GetTaxRate 获取税率（百分比，如 10 表示 10%）
func (s *SettingService) GetTaxRate(defaultValue decimal.Decimal) decimal.Decimal {
	return s.orderConfigDecimal(constants.SettingFieldTaxRate, defaultValue)
}

// GetDeliveryFee 获取配送费
func (s *SettingService) GetDeliveryFee(defaultValue decimal.Decimal) decimal.Decimal {
	return s.orderConfigDecimal(constants.SettingFieldDeliveryFee, defaultValue)
}

// GetPrepTimeMinutes 获取默认备餐分钟数
func (s *SettingService) GetPrepTimeMinutes(defaultValue int) int {
	return s.orderConfigInt(constants.SettingFieldPrepTimeMinutes, defaultValue)
}

// GetDelayExpireMinutes 获取延迟确认超时分钟数
func (s *SettingService) GetDelayExpireMinutes(defaultValue int) int {
	return s.orderConfigInt(constants.SettingFieldDelayExpireMinutes, defaultValue)
}

func (s *SettingService) orderConfigInt(field string, defaultValue int) int {
	value, err := s.GetByKey(constants.SettingKeyOrderConfig)
	if err != nil || value == nil {
		return defaultValue
	}
	raw, ok := value[field]
	if !ok {
		return defaultValue
	}
	parsed, err := parseSettingInt(raw)
	if err != nil || parsed <= 0 {
		return defaultValue
	}
	return parsed
}

func (s *SettingService) orderConfigDecimal(field string, defaultValue decimal.Decimal) decimal.Decimal {
	value, err := s.GetByKey(constants.SettingKeyOrderConfig)
	if err != nil || value == nil {
		return defaultValue
	}
	raw, ok := value[field]
	if !ok {
		return defaultValue
	}
	parsed, err := parseSettingDecimal(raw)
	if err != nil || parsed.IsNegative() {
		return defaultValue
	}
	return parsed
}

func parseSettingInt(value interface{}) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		return int(v), nil
	case json.Number:
		if i, err := v.Int64(); err == nil {
			return int(i), nil
		}
		if f, err := v.Float64(); err == nil {
			return int(f), nil
		}
		return 0, fmt.Errorf("invalid json number")
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return 0, fmt.Errorf("empty string")
		}
		return strconv.Atoi(trimmed)
	default:
		return 0, fmt.Errorf("unsupported setting type %T", value)
	}
}

func parseSettingDecimal(value interface{}) (decimal.Decimal, error) {
	switch v := value.(type) {
	case int:
		return decimal.NewFromInt(int64(v)), nil
	case int64:
		return decimal.NewFromInt(v), nil
	case float64:
		return decimal.NewFromFloat(v), nil
	case json.Number:
		return decimal.NewFromString(v.String())
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return decimal.Zero, fmt.Errorf("empty string")
		}
		return decimal.NewFromString(trimmed)
	default:
		return decimal.Zero, fmt.Errorf("unsupported setting type %T", value)
	}
}
