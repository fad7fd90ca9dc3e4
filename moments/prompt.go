package moments

import (
	"fmt"
	"strings"
)

// clipLength renders the target clip length for prompts, e.g. "around 2
// minutes" or "around 45 seconds".
func clipLength(avgSeconds int) string {
	if avgSeconds >= 60 {
		unit := "minute"
		if avgSeconds >= 120 {
			unit = "minutes"
		}
		return fmt.Sprintf("around %d %s", avgSeconds/60, unit)
	}
	return fmt.Sprintf("around %d seconds", avgSeconds)
}

func bestOfPrompt(q Query) string {
	length := clipLength(q.AvgClipSeconds)
	var b strings.Builder
	if g := strings.TrimSpace(q.Guidance); g != "" {
		b.WriteString(`You are helping a content creator make a "best of" compilation video from their livestream or long-form video.` + "\n\n")
		b.WriteString("Here is the transcript:\n" + q.Transcript + "\n\n")
		b.WriteString("The creator has given you these instructions about what they're looking for:\n" + g + "\n\n")
		fmt.Fprintf(&b, "Find %d segments that match their criteria. Each clip should be %s long (total ~%d minutes).\n\n", q.Count, length, q.TargetMinutes)
		b.WriteString("IMPORTANT RULES:\n")
		b.WriteString("1. Each segment should be self-contained and make sense on its own\n")
		b.WriteString("2. Segments should have clear beginnings and endings (don't cut mid-sentence)\n")
		b.WriteString("3. Order the segments in a way that flows well for a compilation\n")
		b.WriteString("4. Prefer moments with high energy, humor, insights, or memorable quotes\n")
		fmt.Fprintf(&b, "5. Each clip should be approximately %s - not too short, not too long\n", length)
	} else {
		b.WriteString(`You are an expert video editor helping create a "best of" compilation from a livestream or long-form video.` + "\n\n")
		b.WriteString("Here is the transcript:\n" + q.Transcript + "\n\n")
		fmt.Fprintf(&b, "Find the %d BEST moments for a highlight compilation. Each clip should be %s long (total ~%d minutes).\n\n", q.Count, length, q.TargetMinutes)
		b.WriteString("Look for:\n- Funniest moments\n- Most insightful or educational parts\n- High energy or exciting segments\n")
		b.WriteString("- Memorable quotes or reactions\n- Story climaxes or payoffs\n- Audience interaction highlights\n\n")
		b.WriteString("IMPORTANT RULES:\n")
		b.WriteString("1. Each segment should be self-contained and make sense on its own\n")
		b.WriteString("2. Don't cut mid-sentence or mid-thought\n")
		b.WriteString("3. Order segments to create good flow (don't just use chronological order)\n")
		b.WriteString("4. Vary the types of moments (mix funny with serious, etc.)\n")
		fmt.Fprintf(&b, "5. Each clip should be approximately %s - aim for this length consistently\n", length)
	}
	b.WriteString("\nTimestamps are MM:SS or HH:MM:SS as they appear in the transcript. ")
	b.WriteString(`Respond with a JSON object {"moments": [...]} where each moment has start_time, end_time, title, reason and order (starting at 1).`)
	return b.String()
}

func shortsPrompt(q Query) string {
	var b strings.Builder
	if g := strings.TrimSpace(q.Guidance); g != "" {
		b.WriteString("You are helping a content creator find specific clips from their video. They have given you instructions about what they're looking for.\n\n")
		b.WriteString("Here is the transcript:\n" + q.Transcript + "\n\n")
		b.WriteString("USER'S INSTRUCTIONS:\n" + g + "\n\n")
		fmt.Fprintf(&b, "YOUR TASK: Find exactly %d clips that match what the user asked for above.\n\n", q.Count)
		b.WriteString("How to interpret their request:\n")
		fmt.Fprintf(&b, "- If they mention a SPECIFIC MOMENT, find that moment and create %d different variations with slightly different start/end times so they can pick the best cut.\n", q.Count)
		fmt.Fprintf(&b, "- If they mention a THEME or IDEA, find %d DIFFERENT moments throughout the video that match that theme.\n", q.Count)
		b.WriteString("- If they specify a duration, use that. Otherwise default to 20-30 seconds per clip.\n\n")
		b.WriteString("IMPORTANT: Only return clips that match their request. Do not include unrelated \"viral\" moments.\n")
	} else {
		b.WriteString("You are an expert content strategist specializing in viral short-form content. ")
		b.WriteString("Analyze this video transcript and identify the MOST INTERESTING MOMENTS that would make great standalone clips.\n\n")
		b.WriteString("Here is the transcript:\n" + q.Transcript + "\n\n")
		fmt.Fprintf(&b, "TASK: Identify exactly %d of the most engaging, viral-worthy moments from this video.\n\n", q.Count)
		b.WriteString("CRITERIA for selecting moments:\n")
		b.WriteString("1. Emotional peaks - funny moments, surprising revelations, intense reactions\n")
		b.WriteString("2. Valuable insights - key tips, important information, \"aha\" moments\n")
		b.WriteString("3. Story hooks - compelling narratives, cliffhangers, dramatic moments\n")
		b.WriteString("4. Quotable content - memorable statements, hot takes, strong opinions\n")
		b.WriteString("5. Visual potential - moments that likely have interesting visuals or actions\n\n")
		b.WriteString("RULES:\n")
		fmt.Fprintf(&b, "1. TARGET LENGTH: 20-30 seconds. Only go longer (up to %d seconds) if the moment truly requires it.\n", q.MaxClipSeconds)
		b.WriteString("2. Pick segments that can stand alone without additional context\n")
		b.WriteString("3. Avoid intros, outros, and filler content\n")
		b.WriteString("4. Focus on the most ENGAGING parts, not just informative ones\n")
		b.WriteString("5. Start right when the interesting part begins, end right after it concludes\n")
	}
	b.WriteString("\nTimestamps are MM:SS or HH:MM:SS as they appear in the transcript. ")
	b.WriteString(`Respond with a JSON object {"moments": [...]} where each moment has start_time, end_time, title, reason and viral_score (1-10, how likely the clip performs well as a short).`)
	return b.String()
}
