package util

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

type probeOutput struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Duration  string `json:"duration"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// ProbeDurationSeconds 使用 ffprobe 获取视频时长（秒，四舍五入）
func ProbeDurationSeconds(videoPath string) (int, error) {
	out, err := ffmpeg.Probe(videoPath)
	if err != nil {
		return 0, fmt.Errorf("获取视频信息失败: %w", err)
	}
	return ParseProbeDuration(out)
}

// ParseProbeDuration 解析 ffprobe 的 JSON 输出；format 没有时长时退回视频流的时长
func ParseProbeDuration(probeJSON string) (int, error) {
	var result probeOutput
	if err := json.Unmarshal([]byte(probeJSON), &result); err != nil {
		return 0, fmt.Errorf("解析视频信息失败: %w", err)
	}

	raw := result.Format.Duration
	if raw == "" {
		for _, s := range result.Streams {
			if s.CodecType == "video" && s.Duration != "" {
				raw = s.Duration
				break
			}
		}
	}
	if raw == "" {
		return 0, fmt.Errorf("视频时长缺失")
	}

	seconds, err := strconv.ParseFloat(raw, 64)
	if err != nil || seconds < 0 {
		return 0, fmt.Errorf("视频时长非法: %q", raw)
	}
	return int(math.Round(seconds)), nil
}
