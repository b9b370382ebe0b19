package utility

import (
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
)

// ToMap chuyển đổi struct (hoặc map) thành map[string]interface{} thông qua BSON roundtrip.
// Dùng cho các thao tác update của base service để tôn trọng bson tags của model.
func ToMap(s interface{}) (map[string]interface{}, error) {
	// Nếu đã là map, trả về luôn
	if m, ok := s.(map[string]interface{}); ok {
		return m, nil
	}

	var stringInterfaceMap map[string]interface{}
	raw, err := bson.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("bson marshal failed: %w", err)
	}
	err = bson.Unmarshal(raw, &stringInterfaceMap)
	if err != nil {
		return nil, fmt.Errorf("bson unmarshal failed: %w", err)
	}
	return stringInterfaceMap, nil
}
