package redact

import "github.com/forPelevin/mutecut/internal/types"

// PlanRender picks the render plan for a merged range set. Video is always a
// stream copy; audio is only re-encoded when something has to be muted.
func PlanRender(merged []types.MuteRange) types.RenderPlan {
	if len(merged) == 0 {
		return types.RenderPlan{
			NeedsFilter: false,
			AudioCodec:  types.CodecCopy,
			VideoCodec:  types.CodecCopy,
		}
	}
	return types.RenderPlan{
		NeedsFilter: true,
		AudioCodec:  types.CodecTranscode,
		VideoCodec:  types.CodecCopy,
	}
}
