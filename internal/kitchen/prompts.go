package kitchen

import (
	"fmt"
	"strings"

	"recipebook/internal/providers"
)

func validationPrompt(ingredients []string) providers.Prompt {
	return providers.Prompt{
		System: "You are a chef validating cooking ingredients.",
		User: fmt.Sprintf(`Analyze these ingredients and provide validation info:
Ingredients: %s

Please check:
1. Are these common cooking ingredients?
2. Are there any potentially unsafe combinations?
3. What type of dishes could these ingredients make?

Format the response as a brief summary.`, strings.Join(ingredients, ", ")),
		Temperature: 0.3,
	}
}

func optionsPrompt(ingredients []string) providers.Prompt {
	return providers.Prompt{
		System: "You are a creative international chef generating diverse and exciting recipe ideas.",
		User: fmt.Sprintf(`Create %d unique recipe ideas using these ingredients: %s

For each recipe provide:
1. A creative name
2. A brief description
3. A list of any additional key ingredients needed
4. Estimated cooking time
5. Difficulty level (Easy, Medium, Hard)

Respond with a JSON array only, no markdown:
[
  {
    "name": "Recipe Name",
    "description": "Brief description",
    "content": "Cooking Time: 25 minutes",
    "additionalIngredients": ["ingredient1", "ingredient2"],
    "timeEstimate": "20-30 mins",
    "difficulty": "Easy"
  }
]`, MaxOptions, strings.Join(ingredients, ", ")),
		Temperature: 0.8,
	}
}

func detailsPrompt(name string, ingredients []string) providers.Prompt {
	return providers.Prompt{
		System: `You are a professional chef creating precise recipes.
Always calculate exact cooking times based on preparation and cooking steps.
Determine realistic serving sizes based on ingredient quantities.
Never use generic times or serving sizes.`,
		User: fmt.Sprintf(`Create a detailed recipe for: %s
Using these ingredients: %s

Format the recipe exactly as follows, with a blank line between sections:

Cooking Time: [exact time in minutes] minutes

Prep Time: [exact time in minutes] minutes

Servings: [number] portions

Difficulty: [Easy, Medium or Hard]

Ingredients:
- [each ingredient with exact measurements, one per line]

Instructions:
1. [first step with specific time]
2. [next step]

Chef's Tips:
- [2-3 helpful cooking tips, storage and serving suggestions]

Nutritional Information (per serving):
- Calories
- Protein
- Carbs
- Fat`, name, strings.Join(ingredients, ", ")),
		Temperature: 0.7,
	}
}

func nutritionPrompt(name string, ingredients []string) providers.Prompt {
	return providers.Prompt{
		System: "You are a certified nutritionist providing detailed and accurate nutritional analysis.",
		User: fmt.Sprintf(`Provide a comprehensive nutritional analysis for %s with ingredients: %s

Include:
1. Complete macronutrient breakdown
2. Detailed micronutrient content
3. Caloric content and distribution
4. Daily value percentages
5. Health benefits and considerations
6. Glycemic index estimate
7. Potential allergens
8. Suggestions for nutritional improvements

Write one fact per line as "Label: value" where possible.`, name, strings.Join(ingredients, ", ")),
		Temperature: 0.3,
	}
}
