package server

// Prompts sent alongside the image for the fixed-purpose tools. The
// wording is deliberately strict: local vision models drift into
// commentary unless told exactly what to return.

const ocrPrompt = `Extract ALL visible text from this image.
Rules:
- Keep original spelling, casing, punctuation.
- Preserve line breaks.
- If something is partially unreadable, write [illegible].
Return only the extracted text.`

const uiSpecPrompt = `You are extracting a UI spec from a screenshot.
Return JSON ONLY with this shape:
{
  "summary": string,
  "elements": [
    {
      "type": "button"|"text"|"input"|"checkbox"|"toggle"|"image"|"icon"|"panel"|"list"|"table"|"link"|"other",
      "label": string|null,
      "role": string|null,
      "bounds": {"x": number, "y": number, "w": number, "h": number},
      "notes": string|null
    }
  ]
}
Coordinates are in pixels relative to the top-left of the image.
If you can’t estimate bounds reliably, still include the element with approximate bounds and note it in notes.`
