package service

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// 运单号品牌前缀
const trackingPrefix = "PRCL"

// GenerateTrackingID 生成运单号，格式 PRCL-YYYYMMDD-RAND6
// 随机段 3 字节取自 crypto/rand，防止按序猜测他人运单号；
// 不落库去重，24bit/天的空间内撞号概率可忽略。
func GenerateTrackingID() (string, error) {
	var b [3]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	date := time.Now().UTC().Format("20060102")
	return fmt.Sprintf("%s-%s-%s", trackingPrefix, date, strings.ToUpper(hex.EncodeToString(b[:]))), nil
}
