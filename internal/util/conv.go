package util

import (
	"strconv"
)

// ParseID 解析路径中的节点 ID，0 与非数字一律视为非法
func ParseID(s string) (uint, error) {
	id, err := strconv.ParseUint(s, 10, 32)
	if err != nil || id == 0 {
		return 0, NewValidationError("id", "invalid id "+strconv.Quote(s))
	}
	return uint(id), nil
}
