package models

import (
	"database/sql/driver"
	"encoding/json"
)

// JSON 无模式 JSON 字段类型（用于交易 metadata）
type JSON map[string]interface{}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = make(JSON)
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		if text, ok := value.(string); ok {
			bytes = []byte(text)
		} else {
			return nil
		}
	}
	return json.Unmarshal(bytes, j)
}

// GetString 读取字符串值，缺失或类型不符时返回空串
func (j JSON) GetString(key string) string {
	if j == nil {
		return ""
	}
	if value, ok := j[key].(string); ok {
		return value
	}
	return ""
}
